package tools

import "fmt"

// Status is the outcome class of a tool call.
// no_data means the upstream API answered but had nothing matching; it is
// deliberately distinct from error so callers can present it differently.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
	StatusNoData  Status = "no_data"
)

// ToolResult is the uniform shape every tool returns. Failures of any origin
// (missing credentials, network, HTTP status, empty data) are folded into
// this shape at the call site; tools never panic and never surface transport
// errors to the orchestration loop.
type ToolResult struct {
	Status Status `json:"status"`
	Result string `json:"result"`

	// Coin classification, populated by the coin details tool only
	CoinID          string `json:"coin_id,omitempty"`
	IsNativeAsset   bool   `json:"is_native_asset,omitempty"`
	Chain           string `json:"chain,omitempty"`
	ContractAddress string `json:"contract_address,omitempty"`
}

func Success(format string, args ...interface{}) ToolResult {
	return ToolResult{Status: StatusSuccess, Result: fmt.Sprintf(format, args...)}
}

func Errorf(format string, args ...interface{}) ToolResult {
	return ToolResult{Status: StatusError, Result: fmt.Sprintf(format, args...)}
}

func NoData(format string, args ...interface{}) ToolResult {
	return ToolResult{Status: StatusNoData, Result: fmt.Sprintf(format, args...)}
}

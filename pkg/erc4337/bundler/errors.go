package bundler

import "fmt"

// RPCError is a JSON-RPC error object returned by the bundler.
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("bundler RPC error %d: %s", e.Code, e.Message)
}

// ErrorCode implements go-ethereum's rpc.Error.
func (e *RPCError) ErrorCode() int {
	return e.Code
}

package nxapi

import "encoding/json"

const (
	ContentType     = "application/json-rpc"
	methodCLI       = "cli"
	protocolVersion = 1
	// NX-API answers one request per HTTP exchange, so the id is never correlated.
	callID = 1
)

type Request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  Params `json:"params"`
	ID      int    `json:"id"`
}

type Params struct {
	Cmd     string `json:"cmd"`
	Version int    `json:"version"`
}

func NewRequest(command string) Request {
	return Request{
		JSONRPC: "2.0",
		Method:  methodCLI,
		Params: Params{
			Cmd:     command,
			Version: protocolVersion,
		},
		ID: callID,
	}
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"tendercost/services"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

// newJSONRequest builds a request carrying a JSON body.
func newJSONRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// materialSequence is a minimal valid markup sequence used across handler
// tests: growth, overhead, then VAT on top.
func materialSequence() []services.Step {
	return []services.Step{
		{Op: services.OpMultiply, Base: -1, Operands: []services.Operand{
			{Kind: services.OperandParameter, Key: services.KeyGrowthMaterial},
		}},
		{Op: services.OpMultiply, Base: 0, Operands: []services.Operand{
			{Kind: services.OperandParameter, Key: services.KeyOverhead},
		}},
		{Op: services.OpMultiply, Base: 1, Operands: []services.Operand{
			{Kind: services.OperandParameter, Key: services.KeyVAT},
		}},
	}
}

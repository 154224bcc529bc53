package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/cartsync/pkg/errors"
	"github.com/angelmondragon/cartsync/pkg/types"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, body string, dest any) *pkgerrors.Error {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/cart/", strings.NewReader(body))
	err := DecodeJSONBody(req, dest)
	if err == nil {
		return nil
	}
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	return typed
}

func TestDecodeJSONBodyAcceptsSingleObject(t *testing.T) {
	var payload types.UpsertCartItemRequest
	require.Nil(t, decode(t, `{"product_id":"3","quantity":0}`, &payload))
	require.Equal(t, "3", payload.ProductID)
	require.NotNil(t, payload.Quantity)
	require.Equal(t, 0, *payload.Quantity)
}

func TestDecodeJSONBodyRejectsMalformedBodies(t *testing.T) {
	cases := map[string]string{
		"":                                  "request body is required",
		`{"product_id":`:                    "request body is not valid JSON",
		`{"product_id":"1","quantity":1}{}`: "request body must contain a single JSON object",
		`{"product_id":"1","qty":1}`:        "invalid request body",
		`{"product_id":1,"quantity":1}`:     "invalid request body",
	}
	for body, message := range cases {
		var payload types.UpsertCartItemRequest
		err := decode(t, body, &payload)
		require.NotNil(t, err, body)
		require.Equal(t, message, err.Message(), body)
	}
}

func TestDecodeJSONBodyRejectsOversizedBody(t *testing.T) {
	ids := strings.Repeat(`"x",`, MaxBodyBytes/4)
	var payload types.DeleteCartItemsRequest
	err := decode(t, `{"product_ids":[`+ids+`"x"]}`, &payload)
	require.NotNil(t, err)
	require.Equal(t, "request body is too large", err.Message())
}

func TestDecodeJSONBodyReportsNestedFieldPaths(t *testing.T) {
	var payload types.CalculateSelectionRequest
	err := decode(t, `{"selection":[{"product_id":"1","quantity":2},{"product_id":"","quantity":0}]}`, &payload)
	require.NotNil(t, err)
	require.Equal(t, map[string]string{
		"selection[1].product_id": "is required",
		"selection[1].quantity":   "must be at least 1",
	}, err.Details())

	var del types.DeleteCartItemsRequest
	err = decode(t, `{"product_ids":[]}`, &del)
	require.NotNil(t, err)
	require.Equal(t, map[string]string{"product_ids": "must contain at least 1 item(s)"}, err.Details())
}

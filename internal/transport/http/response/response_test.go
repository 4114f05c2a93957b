package response

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_DefaultAndCustomMessage(t *testing.T) {
	assert.Equal(t, Resp{Message: "Server error"}, Error(http.StatusInternalServerError, ""))
	assert.Equal(t, Resp{Message: "nope"}, Error(http.StatusForbidden, "nope"))
	assert.Equal(t, "I'm a teapot", Error(http.StatusTeapot, "").Message)
}

func TestEnvelopeShape(t *testing.T) {
	b, err := json.Marshal(OK("", map[string]int{"id": 1}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"message":"OK","data":{"id":1}}`, string(b))

	b, err = json.Marshal(Error(http.StatusNotFound, ""))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"message":"Not Found"}`, string(b))
}

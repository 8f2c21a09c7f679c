package record

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportValuesMultipart(t *testing.T) {
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("imei", "frombody"))
	require.NoError(t, mw.WriteField("lat", "1.5"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/update?imei=fromquery&lng=2", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	values, err := reportValues(req)
	require.NoError(t, err)
	assert.Equal(t, "fromquery", values.Get("imei"))
	assert.Equal(t, "1.5", values.Get("lat"))
	assert.Equal(t, "2", values.Get("lng"))
}

func TestReportValuesBrokenBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/update", strings.NewReader("imei=%zz"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	_, err := reportValues(req)
	assert.Error(t, err)
}

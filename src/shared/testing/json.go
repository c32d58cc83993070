package testing

import (
	"encoding/json"
	"github.com/onsi/gomega"
	"github.com/voxsplit/voxsplit-be/src/server/api_error"
	"io"
)

func DecodeJSON[T any](jsonBody io.Reader) T {
	var decoded T
	err := json.NewDecoder(jsonBody).Decode(&decoded)
	gomega.ExpectWithOffset(1, err).NotTo(gomega.HaveOccurred())

	return decoded
}

func DecodeJSONError(jsonBody io.Reader) api_error.JSONAPIError {
	return DecodeJSON[api_error.JSONAPIError](jsonBody)
}

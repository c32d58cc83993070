package testing

import (
	"bytes"
	"encoding/json"
	"github.com/labstack/echo/v4"
	"github.com/onsi/gomega"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
)

type RequestModifier func(r *http.Request)

type RequestModifiers []RequestModifier

func (r *RequestModifiers) Add(mods ...RequestModifier) {
	*r = append(*r, mods...)
}

// FileUpload describes a multipart form file to attach to the request body.
type FileUpload struct {
	FieldName string
	FileName  string
	Contents  []byte
}

type RequestFactory struct {
	Method  string
	Target  string
	JSONObj interface{}
	Upload  *FileUpload
	Mods    RequestModifiers
}

func (r RequestFactory) make(reqMaker func(string, string, io.Reader) *http.Request) *http.Request {
	var body io.Reader
	contentType := ""

	switch {
	case r.Upload != nil:
		buf := &bytes.Buffer{}
		writer := multipart.NewWriter(buf)

		filePart, err := writer.CreateFormFile(r.Upload.FieldName, r.Upload.FileName)
		gomega.ExpectWithOffset(1, err).NotTo(gomega.HaveOccurred())

		_, err = filePart.Write(r.Upload.Contents)
		gomega.ExpectWithOffset(1, err).NotTo(gomega.HaveOccurred())

		err = writer.Close()
		gomega.ExpectWithOffset(1, err).NotTo(gomega.HaveOccurred())

		body = buf
		contentType = writer.FormDataContentType()

	case r.JSONObj != nil:
		buf := &bytes.Buffer{}
		err := json.NewEncoder(buf).Encode(r.JSONObj)
		gomega.ExpectWithOffset(1, err).NotTo(gomega.HaveOccurred())

		body = buf
		contentType = echo.MIMEApplicationJSON
	}

	request := reqMaker(r.Method, r.Target, body)

	if contentType != "" {
		request.Header.Set(echo.HeaderContentType, contentType)
	}

	for _, mod := range r.Mods {
		mod(request)
	}

	return request
}

func (r RequestFactory) MakeFake() *http.Request {
	return r.make(httptest.NewRequest)
}

func (r RequestFactory) Do() (*http.Response, error) {
	makeRealRequest := func(method string, target string, body io.Reader) *http.Request {
		return ExpectSuccess(http.NewRequest(method, target, body))
	}

	req := r.make(makeRealRequest)
	return http.DefaultClient.Do(req)
}

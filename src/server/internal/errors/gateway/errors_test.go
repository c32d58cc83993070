package gateway_test

import (
	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/voxsplit/voxsplit-be/src/server/internal/errors/api"
	"github.com/voxsplit/voxsplit-be/src/server/internal/errors/gateway"
	"github.com/voxsplit/voxsplit-be/src/shared/testing"
	"net/http"
	"net/http/httptest"
)

var _ = Describe("Errors", func() {
	var makeAPIError = func(errorCode api.ErrorCode) *api.Error {
		return &api.Error{
			ErrorCode:     errorCode,
			UserMessage:   "Something failed",
			InternalError: errors.New("Our DB blew up"),
		}
	}

	Describe("HTTP status code handling for ErrorCodes", func() {
		for _, errorCode := range allErrorCodes {
			errorCode := errorCode
			It("processes ErrorCode "+string(errorCode), func() {
				request := httptest.NewRequest(http.MethodGet, "/", nil)
				response := httptest.NewRecorder()
				c := testing.PrepareEchoContext(request, response)

				runTest := func() {
					err := gateway.ErrorResponse(c, makeAPIError(errorCode))
					Expect(err).NotTo(HaveOccurred())
				}
				Expect(runTest).NotTo(Panic())

				Expect(response.Code).To(SatisfyAll(
					BeNumerically(">=", 400),
					BeNumerically("<", 600),
				))

				resErr := testing.DecodeJSONError(response.Body)
				Expect(resErr.Code).To(BeEquivalentTo(errorCode))
				Expect(resErr.Msg).To(Equal("Something failed"))
			})
		}
	})

	Describe("Unmapped ErrorCode", func() {
		It("panics instead of guessing a status", func() {
			request := httptest.NewRequest(http.MethodGet, "/", nil)
			response := httptest.NewRecorder()
			c := testing.PrepareEchoContext(request, response)

			runTest := func() {
				_ = gateway.ErrorResponse(c, makeAPIError("never_mapped"))
			}
			Expect(runTest).To(Panic())
		})
	})
})

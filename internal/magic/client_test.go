package magic

import (
	"context"
	"net/http"
	"net/url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"
)

var _ = Describe("HTTPEndpoint", func() {
	var (
		server   *ghttp.Server
		endpoint *HTTPEndpoint
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		endpoint = NewHTTPEndpoint(server.URL()+"/", nil)
	})

	AfterEach(func() {
		server.Close()
	})

	When("the server answers", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.CombineHandlers(
				ghttp.VerifyRequest("POST", MagicPath),
				ghttp.VerifyContentType("application/x-www-form-urlencoded"),
				ghttp.VerifyFormKV("text", "ABC123"),
				ghttp.VerifyFormKV("bcm_mode", "scan"),
				ghttp.RespondWith(http.StatusOK, `{"mode":"autofill","field":"id_sample","value":"S-42"}`),
			))
		})

		It("should post the scan as a form and decode the instruction", func() {
			resp, err := endpoint.Submit(context.Background(), ScanEvent{Text: "ABC123", Mode: "scan"})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Instruction).To(Equal(Autofill{Field: "id_sample", Value: "S-42"}))
			Expect(server.ReceivedRequests()).To(HaveLen(1))
		})
	})

	When("the server fails", func() {
		BeforeEach(func() {
			server.AppendHandlers(ghttp.RespondWith(http.StatusInternalServerError, "boom"))
		})

		It("should return an error carrying the status", func() {
			_, err := endpoint.Submit(context.Background(), ScanEvent{Text: "x", Mode: "default"})
			Expect(err).To(MatchError(ContainSubstring("status 500")))
		})
	})

	When("the server cannot be reached", func() {
		It("should return an error", func() {
			server.Close()
			_, err := endpoint.Submit(context.Background(), ScanEvent{Text: "x", Mode: "default"})
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("HTTPSubmitter", func() {
	var (
		server    *ghttp.Server
		submitter *HTTPSubmitter
	)

	BeforeEach(func() {
		server = ghttp.NewServer()
		submitter = NewHTTPSubmitter(server.URL()+"/inventory/lts/link/", nil)
	})

	AfterEach(func() {
		server.Close()
	})

	It("should post the values to the action", func() {
		server.AppendHandlers(ghttp.CombineHandlers(
			ghttp.VerifyRequest("POST", "/inventory/lts/link/"),
			ghttp.VerifyFormKV("flowcell", "FC1"),
			ghttp.RespondWith(http.StatusOK, "Success:"),
		))

		submitter.Submit(url.Values{"flowcell": {"FC1"}})
		submitter.Wait()
		Expect(server.ReceivedRequests()).To(HaveLen(1))
	})
})

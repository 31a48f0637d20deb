package magic

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("DecodeResponse", func() {
	var (
		body string
		resp *Response
		err  error
	)

	JustBeforeEach(func() {
		resp, err = DecodeResponse(strings.NewReader(body))
	})

	When("mode is clear", func() {
		BeforeEach(func() {
			body = `{"mode": "clear", "msg": "Received text: abc"}`
		})

		It("should decode a Clear instruction", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Instruction).To(Equal(Clear{}))
		})

		It("should keep msg", func() {
			Expect(resp.HasMsg).To(BeTrue())
			Expect(resp.Msg).To(Equal("Received text: abc"))
		})
	})

	When("mode is redirect with a url", func() {
		BeforeEach(func() {
			body = `{"mode": "redirect", "url": "/inventory/abc/"}`
		})

		It("should decode a Redirect", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Instruction).To(Equal(Redirect{URL: "/inventory/abc/"}))
			Expect(resp.HasMsg).To(BeFalse())
		})
	})

	When("mode is redirect without a url", func() {
		BeforeEach(func() {
			body = `{"mode": "redirect"}`
		})

		It("should decode an Invalid instruction", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Instruction).To(Equal(Invalid{Label: "Error", Reason: "No redirect URL provided by server"}))
		})
	})

	When("mode is autofill", func() {
		BeforeEach(func() {
			body = `{"mode": "autofill", "field": "id_sample", "value": "S-42"}`
		})

		It("should decode an Autofill", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Instruction).To(Equal(Autofill{Field: "id_sample", Value: "S-42"}))
		})
	})

	When("mode is autofill without a field", func() {
		BeforeEach(func() {
			body = `{"mode": "autofill", "value": "S-42"}`
		})

		It("should decode an Invalid instruction", func() {
			Expect(resp.Instruction).To(BeAssignableToTypeOf(Invalid{}))
		})
	})

	When("mode is not recognized", func() {
		BeforeEach(func() {
			body = `{"mode": "unknown_mode", "status": "Busy"}`
		})

		It("should fall back to a Status", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Instruction).To(Equal(Status{Label: "unknown_mode", Text: "Busy"}))
		})
	})

	When("status is not a string", func() {
		BeforeEach(func() {
			body = `{"mode": "Count", "status": 3}`
		})

		It("should render it as text", func() {
			Expect(resp.Instruction).To(Equal(Status{Label: "Count", Text: "3"}))
		})
	})

	When("mode is missing", func() {
		BeforeEach(func() {
			body = `{"msg": "only a notice"}`
		})

		It("should decode no instruction", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.Instruction).To(BeNil())
			Expect(resp.Msg).To(Equal("only a notice"))
		})
	})

	When("the body is not JSON", func() {
		BeforeEach(func() {
			body = `<html>oops</html>`
		})

		It("should return an error", func() {
			Expect(err).To(HaveOccurred())
		})
	})

	When("the body is JSON null", func() {
		BeforeEach(func() {
			body = `null`
		})

		It("should return an error", func() {
			Expect(err).To(HaveOccurred())
		})
	})
})

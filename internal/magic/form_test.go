package magic

import (
	"bytes"
	"net/url"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Form", func() {
	var (
		flowcell *FormField
		device   *FormField
		form     *Form
		got      []url.Values
	)

	BeforeEach(func() {
		got = nil
		flowcell = NewTextInput("flowcell")
		device = NewTextInput("storage_device")
		form = NewForm(func(v url.Values) { got = append(got, v) },
			flowcell, device, NewHiddenInput("bcm_mode", "lts_link"), NewSubmitInput("submit", "Link"))
	})

	Describe("FillState", func() {
		It("should count only visible non-submit fields", func() {
			flowcell.SetValue("FC1")
			filled, total := form.FillState()
			Expect(filled).To(Equal(1))
			Expect(total).To(Equal(2))
		})
	})

	Describe("Field", func() {
		It("should find fields by id", func() {
			f, ok := form.Field("id_storage_device")
			Expect(ok).To(BeTrue())
			Expect(f).To(BeIdenticalTo(device))
		})

		It("should report unknown ids", func() {
			_, ok := form.Field("storage_device")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("Submit", func() {
		It("should snapshot named values without the submit button", func() {
			flowcell.SetValue("FC1")
			form.Submit()
			Expect(got).To(HaveLen(1))
			Expect(got[0]).To(Equal(url.Values{
				"flowcell":       {"FC1"},
				"storage_device": {""},
				"bcm_mode":       {"lts_link"},
			}))
		})

		It("should not be affected by a later reset", func() {
			flowcell.SetValue("FC1")
			form.Submit()
			form.Reset()
			Expect(got[0].Get("flowcell")).To(Equal("FC1"))
		})
	})

	Describe("Reset", func() {
		It("should restore initial values", func() {
			flowcell.SetValue("FC1")
			hidden, _ := form.Field("id_bcm_mode")
			form.Reset()
			Expect(flowcell.Value()).To(BeEmpty())
			Expect(hidden.Value()).To(Equal("lts_link"))
		})
	})
})

var _ = Describe("Terminal", func() {
	var (
		out      *bytes.Buffer
		status   *TextField
		message  *TextField
		terminal *Terminal
		layout   *Registry
	)

	BeforeEach(func() {
		out = &bytes.Buffer{}
		status = NewTextField("")
		message = NewTextField("")
		terminal = NewTerminal(out, status, message)
		layout = NewRegistry()
		layout.Register(terminal.Render)
	})

	It("should print regions that changed", func() {
		status.SetValue("Form Full: ready")
		message.SetValue("Sent command to server")
		layout.Notify()
		Expect(out.String()).To(Equal("status: Form Full: ready\n  >> Sent command to server\n"))
	})

	It("should not repeat unchanged regions", func() {
		status.SetValue("a: b")
		layout.Notify()
		layout.Notify()
		Expect(out.String()).To(Equal("status: a: b\n"))
	})

	It("should stay quiet when a region is cleared", func() {
		message.SetValue("hi")
		layout.Notify()
		message.SetValue("")
		layout.Notify()
		Expect(out.String()).To(Equal("  >> hi\n"))
	})
})

var _ = Describe("WriterNavigator", func() {
	It("should print and remember the url", func() {
		out := &bytes.Buffer{}
		nav := NewWriterNavigator(out)
		nav.Navigate("/inventory/abc/")
		Expect(out.String()).To(Equal("open: /inventory/abc/\n"))
		Expect(nav.Last()).To(Equal("/inventory/abc/"))
	})
})

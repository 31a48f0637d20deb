package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/ghttp"

	"github.com/zombor/bcmagic/internal/bcmagic"
	"github.com/zombor/bcmagic/internal/labels"
	"github.com/zombor/bcmagic/internal/magic"
)

var _ = Describe("Handler", func() {
	var (
		service     *Service
		printer     *mockPrinter
		ghttpServer *ghttp.Server
	)

	BeforeEach(func() {
		db, err := NewBoltDB(openBolt())
		Expect(err).NotTo(HaveOccurred())
		tmpl, err := labels.ParseTemplate(labels.ItemTemplate)
		Expect(err).NotTo(HaveOccurred())

		printer = &mockPrinter{}
		service = NewServiceWithDeps(db, printer, tmpl, &sequenceIDs{}, fixedTime{now: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)})

		plugins := bcmagic.NewPlugins()
		Expect(service.Register(plugins)).To(Succeed())
		server := bcmagic.NewServerWithMux(bcmagic.NewService(newKeywordDB(), plugins), bcmagic.BasicAuth{}, http.NewServeMux())
		NewHandler(service).RegisterRoutes(server)

		ghttpServer = ghttp.NewServer()
		anyPath := regexp.MustCompile(".*")
		for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
			ghttpServer.RouteToHandler(method, anyPath, server.ServeHTTP)
		}
	})

	AfterEach(func() {
		ghttpServer.Close()
	})

	do := func(method, path string, body io.Reader) *http.Response {
		req, err := http.NewRequest(method, ghttpServer.URL()+path, body)
		Expect(err).NotTo(HaveOccurred())
		resp, err := http.DefaultClient.Do(req)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	readBody := func(resp *http.Response) string {
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return string(body)
	}

	createItem := func(barcode string) *Item {
		payload, err := json.Marshal(map[string]string{"barcode_id": barcode, "item_type": "hard_drive", "location": "Shelf 2"})
		Expect(err).NotTo(HaveOccurred())
		resp := do(http.MethodPost, "/inventory/items/", bytes.NewReader(payload))
		defer resp.Body.Close()
		Expect(resp.StatusCode).To(Equal(http.StatusCreated))

		var item Item
		Expect(json.NewDecoder(resp.Body).Decode(&item)).To(Succeed())
		return &item
	}

	Describe("items", func() {
		It("should create and fetch an item", func() {
			item := createItem("HD-001")
			Expect(IsUUID(item.UUID)).To(BeTrue())

			resp := do(http.MethodGet, "/inventory/HD-001/", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(readBody(resp)).To(ContainSubstring(`"uuid":"` + item.UUID + `"`))
		})

		It("should reject invalid items", func() {
			resp := do(http.MethodPost, "/inventory/items/", strings.NewReader(`{"item_type":"hard_drive"}`))
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(readBody(resp)).To(ContainSubstring("location is required"))
		})

		It("should reject malformed bodies", func() {
			resp := do(http.MethodPost, "/inventory/items/", strings.NewReader(`{`))
			Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			resp.Body.Close()
		})

		It("should list items filtered by type", func() {
			createItem("HD-001")
			resp := do(http.MethodGet, "/inventory/data/items/?type=freezer_box", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(readBody(resp)).To(MatchJSON(`[]`))
		})

		It("should delete an item", func() {
			createItem("HD-001")
			resp := do(http.MethodDelete, "/inventory/HD-001/", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			resp.Body.Close()

			resp = do(http.MethodGet, "/inventory/HD-001/", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			resp.Body.Close()
		})
	})

	Describe("print", func() {
		It("should print the item label", func() {
			createItem("HD-001")
			resp := do(http.MethodPost, "/inventory/HD-001/print/", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			resp.Body.Close()
			Expect(printer.Printed()).To(HaveLen(1))
		})

		It("should answer bad gateway when the printer fails", func() {
			createItem("HD-001")
			printer.err = errors.New("connection refused")
			resp := do(http.MethodPost, "/inventory/HD-001/print/", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusBadGateway))
			resp.Body.Close()
		})

		It("should report the printer status", func() {
			printer.status = "offline"
			resp := do(http.MethodGet, "/inventory/printer/status/", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(readBody(resp)).To(MatchJSON(`{"status":"offline"}`))
		})

		It("should answer not found for unknown items", func() {
			resp := do(http.MethodPost, "/inventory/HD-404/print/", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			resp.Body.Close()
		})
	})

	Describe("lts", func() {
		It("should link through the path route", func() {
			createItem("HD-001")
			resp := do(http.MethodGet, "/inventory/lts/link/FC1/HD-001/", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(readBody(resp)).To(HavePrefix("Success:"))

			resp = do(http.MethodGet, "/inventory/lts/FC1/", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(readBody(resp)).To(ContainSubstring(`"flowcell_id":"FC1"`))
		})

		It("should link through the form route", func() {
			createItem("HD-001")
			resp, err := http.PostForm(ghttpServer.URL()+"/inventory/lts/link/", url.Values{
				"flowcell":       {"FC1"},
				"storage_device": {"HD-001"},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			Expect(readBody(resp)).To(ContainSubstring("Storage Device Linked to LTS: true"))
		})

		It("should answer not found for unknown devices", func() {
			resp := do(http.MethodGet, "/inventory/lts/link/FC1/HD-404/", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			resp.Body.Close()
		})

		It("should answer not found for unknown flowcells", func() {
			resp := do(http.MethodGet, "/inventory/lts/FC404/", nil)
			Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
			resp.Body.Close()
		})
	})

	Describe("scanning with the client controller", func() {
		var (
			shell     magic.Shell
			submitter *magic.HTTPSubmitter
			ctrl      *magic.Controller
		)

		BeforeEach(func() {
			submitter = magic.NewHTTPSubmitter(ghttpServer.URL()+"/inventory/lts/link/", nil)
			shell = magic.Shell{
				Scan:    magic.NewTextField(""),
				Mode:    magic.NewTextField(LinkMode),
				Status:  magic.NewTextField(""),
				Message: magic.NewTextField(""),
				Form: magic.NewForm(submitter.Submit,
					magic.NewTextInput("flowcell"),
					magic.NewTextInput("storage_device"),
					magic.NewSubmitInput("save", "Link"),
				),
				Navigator: magic.NewWriterNavigator(io.Discard),
			}
			ctrl = magic.NewControllerWithClock(shell, magic.NewHTTPEndpoint(ghttpServer.URL(), nil), stoppedClock{})
		})

		scan := func(text string) {
			shell.Scan.SetValue(text)
			ctrl.HandleKey(context.Background(), '\n')
			ctrl.Wait()
		}

		It("should fill the link form and submit it once full", func() {
			device := createItem("HD-001")

			scan("fc|FC1")
			Expect(shell.Status.Value()).To(Equal("Form Fill Count: Count(1) - Total(2)"))

			scan("invb|HD-001")
			Expect(shell.Status.Value()).To(Equal("Form Full: Form is now full and ready to process"))
			Expect(shell.Message.Value()).To(Equal("Storage device: hard_drive"))

			field, ok := shell.Form.Field(FieldFlowcell)
			Expect(ok).To(BeTrue())
			Expect(field.Value()).To(BeEmpty())

			submitter.Wait()
			lts, err := service.GetStorage("FC1")
			Expect(err).NotTo(HaveOccurred())
			Expect(lts.StorageDevices).To(Equal([]string{device.UUID}))
		})

		It("should show server errors as status", func() {
			scan("lib|L1")
			Expect(shell.Status.Value()).To(Equal("Error: Scan (lib|L1) is not a flowcell or storage device"))
			Expect(shell.Message.Value()).To(Equal(magic.ReceivedNotice))
		})
	})
})

// stoppedClock never fires, so messages stay put
type stoppedClock struct{}

func (stoppedClock) AfterFunc(d time.Duration, f func()) {}

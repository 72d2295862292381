package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"curator/internal/client"
	"curator/internal/models"
	"curator/internal/testhelpers"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const baseURL = "http://curator.test"

var _ = Describe("Client", func() {
	var (
		c   *client.Client
		ctx context.Context
	)

	BeforeEach(func() {
		testhelpers.Activate()
		DeferCleanup(testhelpers.Deactivate)

		ctx = context.Background()
		c = client.New(baseURL+"/", "s3cret", client.WithHTTPClient(http.DefaultClient))
	})

	AfterEach(func() {
		Expect(testhelpers.IsDone()).To(BeTrue())
	})

	It("creates the schema", func() {
		testhelpers.New(baseURL).Post("/api/setup").
			MatchHeader("Authorization", "Bearer s3cret").
			Reply(http.StatusOK).
			JSON(map[string]any{"success": true, "message": "created table curation_pool and its indexes"})

		message, err := c.Setup(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(message).To(Equal("created table curation_pool and its indexes"))
	})

	It("reads the status report", func() {
		testhelpers.New(baseURL).Get("/api/status").
			Reply(http.StatusOK).
			BodyString(`{"status":"ok","table_exists":true,"total_count":3,"status_breakdown":[{"status":"approved","count":1},{"status":"unverified","count":2}]}`)

		report, err := c.Status(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(report.TableExists).To(BeTrue())
		Expect(report.TotalCount).To(BeEquivalentTo(3))
		Expect(report.StatusBreakdown).To(ConsistOf(
			models.StatusCount{Status: models.StatusApproved, Count: 1},
			models.StatusCount{Status: models.StatusUnverified, Count: 2},
		))
	})

	It("sends list filters as query parameters", func() {
		limit := 0
		testhelpers.New(baseURL).Get("/api/images?status=all&search=haru&limit=0").
			Reply(http.StatusOK).
			BodyString(`[]`)

		images, err := c.List(ctx, client.ListOptions{Status: "all", Search: "haru", Limit: &limit})

		Expect(err).NotTo(HaveOccurred())
		Expect(images).To(BeEmpty())
	})

	It("decodes listed images", func() {
		testhelpers.New(baseURL).Get("/api/images").
			Reply(http.StatusOK).
			BodyString(`[{"id":2,"filename":"b.png","status":"unverified","data":{"caption":"x"}}]`)

		images, err := c.List(ctx, client.ListOptions{})

		Expect(err).NotTo(HaveOccurred())
		Expect(images).To(HaveLen(1))
		Expect(images[0].ID).To(BeEquivalentTo(2))
		Expect(images[0].Filename).To(Equal("b.png"))
		Expect(string(images[0].Data)).To(MatchJSON(`{"caption":"x"}`))
	})

	It("uploads a batch document as-is", func() {
		document, err := testhelpers.LoadFixture("upload.json")
		Expect(err).NotTo(HaveOccurred())
		testhelpers.New(baseURL).Post("/api/upload").
			MatchJSON(string(document)).
			Reply(http.StatusOK).
			JSON(map[string]any{"success": true, "message": "ingested 3 images", "count": 3})

		message, err := c.Upload(ctx, document)

		Expect(err).NotTo(HaveOccurred())
		Expect(message).To(Equal("ingested 3 images"))
	})

	It("refuses to upload invalid JSON", func() {
		_, err := c.Upload(ctx, []byte(`[{"new_filename":`))
		Expect(err).To(MatchError("upload document is not valid JSON"))
	})

	It("sends a status change", func() {
		testhelpers.New(baseURL).Put("/api/images/7").
			MatchJSON(`{"status":"approved"}`).
			Reply(http.StatusOK).
			JSON(map[string]any{"success": true, "message": "updated image 7"})

		message, err := c.UpdateStatus(ctx, 7, models.StatusApproved)

		Expect(err).NotTo(HaveOccurred())
		Expect(message).To(Equal("updated image 7"))
	})

	It("sends a data change", func() {
		testhelpers.New(baseURL).Put("/api/images/7").
			MatchJSON(`{"data":{"caption":"Haru","tags":["dog"]}}`).
			Reply(http.StatusOK).
			JSON(map[string]any{"success": true, "message": "updated image 7"})

		_, err := c.UpdateData(ctx, 7, json.RawMessage(`{"caption":"Haru","tags":["dog"]}`))

		Expect(err).NotTo(HaveOccurred())
	})

	Context("when the server rejects the request", func() {
		It("surfaces the error message", func() {
			testhelpers.New(baseURL).Put("/api/images/7").
				Reply(http.StatusBadRequest).
				BodyString(`{"error":"invalid status \"archived\""}`)

			_, err := c.UpdateStatus(ctx, 7, models.Status("archived"))

			var apiErr *client.APIError
			Expect(errors.As(err, &apiErr)).To(BeTrue())
			Expect(apiErr.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(apiErr.Message).To(Equal(`invalid status "archived"`))
		})

		It("falls back to the status text", func() {
			testhelpers.New(baseURL).Get("/api/status").
				Reply(http.StatusBadGateway).
				BodyString(`<html>bad gateway</html>`)

			_, err := c.Status(ctx)

			Expect(err).To(MatchError("curator API error 502: Bad Gateway"))
		})
	})

	It("omits the authorization header without a token", func() {
		anonymous := client.New(baseURL, "", client.WithHTTPClient(http.DefaultClient))
		testhelpers.New(baseURL).Get("/api/status").
			MatchHeader("Authorization", "").
			Reply(http.StatusOK).
			BodyString(`{"status":"missing_table","message":"table curation_pool does not exist, run setup first","table_exists":false}`)

		report, err := anonymous.Status(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(report.Status).To(Equal("missing_table"))
	})
})

var _ = Describe("WithHTTPClient", func() {
	It("sends requests through the given client", func() {
		DeferCleanup(testhelpers.DefaultTransport.Reset)
		testhelpers.New(baseURL).Get("/api/status").
			Reply(http.StatusOK).
			BodyString(`{"status":"ok","table_exists":true,"total_count":0,"status_breakdown":[]}`)

		c := client.New(baseURL, "", client.WithHTTPClient(&http.Client{Transport: testhelpers.DefaultTransport}))
		report, err := c.Status(context.Background())

		Expect(err).NotTo(HaveOccurred())
		Expect(report.Status).To(Equal("ok"))
		Expect(testhelpers.IsDone()).To(BeTrue())
	})
})

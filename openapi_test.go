package main_test

import (
	"context"

	"github.com/getkin/kin-openapi/openapi3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("OpenAPI document", func() {
	var doc *openapi3.T

	BeforeEach(func() {
		loader := openapi3.NewLoader()
		var err error
		doc, err = loader.LoadFromFile("api/openapi.yml")
		Expect(err).ToNot(HaveOccurred())
	})

	It("is a valid OpenAPI 3 document", func() {
		Expect(doc.Validate(context.Background())).To(Succeed())
	})

	It("serves everything under the versioned base path", func() {
		Expect(doc.Servers).To(HaveLen(1))
		Expect(doc.Servers[0].URL).To(Equal("/api/v1"))
	})

	It("documents every route group", func() {
		for _, path := range []string{
			"/auth/login",
			"/auth/refresh",
			"/signup",
			"/categories",
			"/friends",
			"/friends/{id}",
			"/cards",
			"/cards/{id}",
			"/expenses",
			"/expenses/{id}",
			"/expenses/{id}/pay",
			"/bills/upload",
			"/bills",
			"/bills/{id}",
			"/bills/{id}/transactions/{transactionID}/assign",
			"/bills/{id}/transactions/{transactionID}/ignore",
			"/bills/{id}/finalize",
			"/ledger/summary",
			"/ledger/friends",
		} {
			Expect(doc.Paths.Find(path)).ToNot(BeNil(), "missing path %s", path)
		}
	})

	It("declares bearer authentication", func() {
		scheme := doc.Components.SecuritySchemes["bearerAuth"]
		Expect(scheme).ToNot(BeNil())
		Expect(scheme.Value.Scheme).To(Equal("bearer"))
	})
})

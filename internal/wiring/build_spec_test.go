package wiring

import (
	"context"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"panelcheck/internal/compare"
	"panelcheck/internal/pipeline"
)

var _ = ginkgo.Describe("Build", func() {
	var (
		u   *upstream
		app *App
	)

	ginkgo.BeforeEach(func() {
		u = newUpstream(ginkgo.GinkgoT())
		var err error
		app, err = Build(u.config(), WithHTTPClient(u.Client()), WithLimiterOptions(frozenClock()))
		gomega.Expect(err).To(gomega.Succeed())
	})

	ginkgo.It("shares one annotation limiter across both releases", func() {
		_, err := app.Service.Analyze(context.Background(), pipeline.Request{
			PanelID: "42", CurrentEnsemblVersion: 109, TargetEnsemblVersion: 112, Limit: 3,
		})
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(app.EnsemblLimiter.InWindow()).To(gomega.Equal(6))
		gomega.Expect(app.PanelLimiter.InWindow()).To(gomega.Equal(1))
	})

	ginkgo.It("keeps limiter state between analyses", func() {
		for i := 0; i < 2; i++ {
			_, err := app.Service.Analyze(context.Background(), pipeline.Request{
				PanelID: "42", CurrentEnsemblVersion: 109, TargetEnsemblVersion: 112, Limit: 1,
			})
			gomega.Expect(err).To(gomega.Succeed())
		}
		gomega.Expect(app.PanelLimiter.InWindow()).To(gomega.Equal(2))
		gomega.Expect(app.EnsemblLimiter.InWindow()).To(gomega.Equal(4))
	})

	ginkgo.It("returns genes in panel order", func() {
		resp, err := app.Service.Analyze(context.Background(), pipeline.Request{
			PanelID: "42", CurrentEnsemblVersion: 109, TargetEnsemblVersion: 112, Limit: 4,
		})
		gomega.Expect(err).To(gomega.Succeed())

		var symbols []string
		for _, g := range resp.Genes {
			symbols = append(symbols, g.GeneSymbol)
		}
		gomega.Expect(symbols).To(gomega.Equal([]string{"A", "B", "C", compare.UnknownSymbol}))
		gomega.Expect(resp.HasMore).To(gomega.BeFalse())
	})
})

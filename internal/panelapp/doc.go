// Package panelapp is a client for the gene panel catalog API.
//
// Usage:
//
//	client, err := panelapp.New(panelapp.DefaultBaseURL, panelapp.WithLimiter(lim))
//	panels, err := client.Search(ctx, "cardiomyopathy", true)
//	panel, err := client.PanelGenes(ctx, "749")
//
// Every request, including each page of a search, is admitted through the
// configured limiter first. Failures are returned to the caller unchanged;
// the client never retries.
package panelapp

// Package model contains domain models passed between layers.
package model

// Product is the metadata record resolved from the product catalog.
// Fields mirror the catalog API schema for unreviewed products.
type Product struct {
	ID                   string `json:"_id"`
	Name                 string `json:"name"`
	Description          string `json:"description"`
	Category             string `json:"category"`
	URL                  string `json:"url"`
	Location             string `json:"location"`
	Network              string `json:"network"`
	TeamSize             int    `json:"teamSize"`
	TwitterProfile       string `json:"twitterProfile"`
	CurrentReviewCycle   int    `json:"currentReviewCycle"`
	SpecialReviewRequest string `json:"specialReviewRequest"`
}

// Breakdown holds the ten-criterion rating set produced by the oracle
// for one product. Every criterion is an integer in [0, 10].
type Breakdown struct {
	Project      int `json:"project"`
	Userbase     int `json:"userbase"`
	Utility      int `json:"utility"`
	Security     int `json:"security"`
	Team         int `json:"team"`
	Tokenomics   int `json:"tokenomics"`
	Marketing    int `json:"marketing"`
	Roadmap      int `json:"roadmap"`
	Clarity      int `json:"clarity"`
	Partnerships int `json:"partnerships"`
}

// Review is the oracle's structured reply for one product.
type Review struct {
	Product   string    `json:"product"`
	Breakdown Breakdown `json:"breakdown"`
}

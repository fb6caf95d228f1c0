// Package sdk provides a Go client for the shelfdex recommendation API.
//
//	client, _ := sdk.New("http://localhost:8080", sdk.WithAPIKey("secret"))
//	res, _ := client.Recommend(ctx, sdk.RecommendRequest{
//	    Query:   "a cozy mystery set in a small town",
//	    Style:   "friendly",
//	    UseMood: true,
//	})
//	for _, b := range res.RecommendedBooks {
//	    fmt.Println(b.Title, "by", b.Author)
//	}
//
// Every recommended book is guaranteed to exist in the service catalog;
// the server reconciles the generated answer against the retrieved set
// before responding.
package sdk

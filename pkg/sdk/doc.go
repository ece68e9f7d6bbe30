// Package featuredsearch provides an embedded Go client for the featured
// search results catalog backed by Redis with the search module.
//
// The client talks to the store directly, so it suits batch tooling and
// sibling services that share the database with the API server.
//
//	client, _ := featuredsearch.New(ctx, featuredsearch.WithRedis("localhost:6379", ""))
//	defer client.Close()
//
//	client.Results().Create(ctx, featuredsearch.ResultInput{
//	    URL:   "https://gato.example.edu",
//	    Title: "Gato CMS",
//	    Entries: []featuredsearch.Entry{
//	        {Keyphrase: "gato", Mode: "keyword", Priority: 1},
//	    },
//	})
//	matches, _ := client.Search(ctx, "gato training")
package featuredsearch

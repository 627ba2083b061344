// Package brewdesk embeds the brewdesk answering pipeline in a Go program,
// without the HTTP server.
//
// The caller supplies a prebuilt product corpus, the outlet records and a query
// embedder that matches the corpus; a text generator is optional. Without one,
// every answer is the deterministic evidence fallback.
//
//	client, _ := brewdesk.New(ctx,
//	    brewdesk.WithEmbedder(myEmbedder, 1536),
//	    brewdesk.WithProducts(products...),
//	    brewdesk.WithOutlets(outlets...),
//	    brewdesk.WithGenerator(myGenerator),
//	)
//	defer client.Close()
//
//	ans, _ := client.Answer(ctx, "Is the SS 2 outlet open after 10pm on Friday?")
//	fmt.Println(ans.Text, ans.Intent, ans.EvidenceRefs)
//
// Conversation state stays with the caller and is passed per question:
//
//	ans, _ = client.Answer(ctx, "What about its address?",
//	    brewdesk.WithConversation("", brewdesk.Turn{Role: "user", Text: "Is SS 2 open late?"}),
//	)
package brewdesk

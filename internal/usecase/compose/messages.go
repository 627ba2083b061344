package compose

// Fixed user-facing answers.
const (
	// CannotHelp answers out-of-domain questions without generation.
	CannotHelp = "Sorry, I can only help with questions about our drinkware products and our outlets " +
		"(locations, opening hours and services)."
	// NoResults answers when neither branch produced evidence.
	NoResults = "I couldn't find any information for your query. " +
		"Please try rephrasing it or searching for a different outlet."
	// NoProducts answers a product question whose price range matched nothing.
	NoProducts = "I couldn't find any products matching your criteria, especially with the specified " +
		"price range. Please try a different query or adjust your budget."

	// DefaultSystemPrompt frames the generation call.
	DefaultSystemPrompt = "You are a helpful assistant for a coffee chain. Answer the user's question " +
		"using only the provided product evidence and outlet records. If the answer is not in the " +
		"provided context, say that you don't have information on that specific product or outlet. " +
		"Be concise."
)

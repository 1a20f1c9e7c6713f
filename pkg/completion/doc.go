// Package completion sends prompts to a text-generation model.
//
// [Completer] is the single operation the editor's model-call nodes need:
// prompt in, text out. [Anthropic] implements it with the Anthropic
// Messages API, and [Cached] memoizes answers in any [cache.Cache]:
//
//	llm := completion.NewAnthropic(completion.AnthropicOptions{Model: cfg.Model})
//	c := completion.NewCached(llm, fileCache, nil, llm.Model(), 0)
//	text, err := c.Complete(ctx, "Translate this: hello")
//	if err != nil {
//	    fmt.Println(completion.Describe(err))
//	}
//
// API failures come back as pkg/errors coded errors (RATE_LIMITED,
// NETWORK_ERROR, TIMEOUT, INVALID_INPUT).
package completion

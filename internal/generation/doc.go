// Package generation defines the boundary interfaces to the external
// generative AI provider. It abstracts the details of the Gemini API so
// the task orchestration core can generate outlines, per-page
// descriptions and per-page images without coupling to a specific
// provider SDK.
package generation

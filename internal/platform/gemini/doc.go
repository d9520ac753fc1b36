// Package gemini implements the generation interfaces using Google's
// Gemini API. One Generator serves outline, description and image
// generation; text and image calls may target different models.
package gemini

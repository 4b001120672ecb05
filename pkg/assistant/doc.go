// Package assistant answers project-management questions with an OpenAI
// compatible chat completions API.
//
// Two flows are supported: a plain streamed chat where deltas are relayed
// to the caller as they arrive, and a retrieval flow (Ask) that embeds the
// question, looks up the nearest knowledge base chunks in pgvector and
// answers with those chunks as context.
package assistant

// Package toolkit ships the built-in tools: PDF report generation, web
// scraping, email delivery and image analysis. Each tool is a FunctionTool
// with a declared JSON schema, so arguments are validated before execution
// and failures surface as coded tool errors instead of Go panics.
package toolkit

// Package schema validates tool-call arguments against the JSON Schema a
// tool server declared for the tool.
//
// Tool sources advertise each tool with an input schema (a raw JSON Schema
// object). Before an invocation is forwarded, the relay checks the model's
// arguments against that declaration. Violations are reported, not enforced:
// the arguments still pass through unchanged, so a lenient server keeps
// working with a sloppy model.
//
// Basic usage:
//
//	err := schema.ValidateArgs(tool.InputSchema, call.Args)
//	if err != nil {
//	    logger.Warn("tool args do not match declared schema", "tool", call.Name, "err", err)
//	}
package schema

// Package config manages configuration parsing and validation for blogcreator.
//
//	                 +-------------+
//	                 |   Config    |
//	                 | (read-only) |
//	                 +------+------+
//	                        |
//	      +-----------------+-----------------+
//	      |                 |                 |
//	+-----+-----+     +-----+-----+     +-----+-----+
//	|   YAML    |     |   JSONC   |     |    HCL    |
//	|  Parser   |     |  Parser   |     |  Parser   |
//	+-----------+     +-----------+     +-----------+
//
// 🎯 Purpose:
// - Locates the GitHub repository that stores the documents
// - Lists the rewrite providers and their credentials
// - Holds the ordered style hints offered to editors
//
// 🔄 Flow:
//  1. Parser chosen by file extension
//  2. Environment fills empty credentials
//  3. Validate fills defaults
//  4. The result is never mutated; a reload builds a new Config
//
// 📝 A provider with no credential is kept in the config. The rewrite
// registry skips it, so it is simply absent at runtime.
//
// 🔍 Example:
//
//	store:
//	  account: walteh
//	  repository: blog
//	  include: ["posts/**/*.md"]
//	providers:
//	  - name: gemini
//	  - name: claude
//	    kind: anthropic
//	style_hints: [concise, formal]
package config

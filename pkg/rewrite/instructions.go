// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rewrite

import (
	"fmt"
	"strings"

	"github.com/walteh/blogcreator/pkg/markdown"
)

// maximum markers of one kind listed in the instructions
const maxListed = 20

// 📜 Instructions builds the system prompt for a rewrite. It names the
// document's structural markers so the model keeps them. Preservation is
// best effort and not checked afterwards.
func Instructions(style, source string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are an editor. Rewrite the markdown document supplied by the user in a %s style.\n", style)
	sb.WriteString("Return only the rewritten markdown, with no preamble, commentary or surrounding code fence.\n")
	sb.WriteString("Keep the meaning and the language of the original.\n")

	outline := markdown.Parse([]byte(source))
	if outline.Empty() {
		return sb.String()
	}

	sb.WriteString("\nPreserve these structural elements exactly:\n")

	if outline.FrontMatter {
		sb.WriteString("- the front matter block between the leading --- lines, unchanged\n")
	}

	for i, h := range outline.Headings {
		if i == maxListed {
			fmt.Fprintf(&sb, "- and %d more headings\n", len(outline.Headings)-maxListed)
			break
		}
		fmt.Fprintf(&sb, "- heading (level %d): %s\n", h.Level, h.Text)
	}

	if n := len(outline.CodeBlocks); n > 0 {
		langs := make([]string, 0, n)
		for _, cb := range outline.CodeBlocks {
			if cb.Language != "" {
				langs = append(langs, cb.Language)
			}
		}
		if len(langs) > 0 {
			fmt.Fprintf(&sb, "- %d fenced code block(s) (%s), content byte-for-byte\n", n, strings.Join(langs, ", "))
		} else {
			fmt.Fprintf(&sb, "- %d fenced code block(s), content byte-for-byte\n", n)
		}
	}

	for i, link := range outline.Links {
		if i == maxListed {
			fmt.Fprintf(&sb, "- and %d more link targets\n", len(outline.Links)-maxListed)
			break
		}
		fmt.Fprintf(&sb, "- link target: %s\n", link)
	}

	return sb.String()
}

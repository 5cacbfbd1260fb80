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

package store

import (
	"strings"
	"unicode"

	"github.com/walteh/blogcreator/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

// 🧹 NormalizePath turns user input into a repository-relative file path.
func NormalizePath(p string) (string, error) {
	clean, err := normalize(p)
	if err != nil {
		return "", err
	}
	if clean == "" {
		return "", errors.Errorf("empty path: %w", remote.ErrInvalidPath)
	}
	return clean, nil
}

// NormalizeDir is NormalizePath for directories, where "", "/" and "." mean the root.
func NormalizeDir(p string) (string, error) {
	return normalize(p)
}

func normalize(p string) (string, error) {
	p = strings.TrimSpace(p)
	p = strings.ReplaceAll(p, `\`, "/")

	for _, r := range p {
		if r == 0 || unicode.IsControl(r) {
			return "", errors.Errorf("path %q contains a control character: %w", p, remote.ErrInvalidPath)
		}
	}

	segments := make([]string, 0, strings.Count(p, "/")+1)
	for _, seg := range strings.Split(p, "/") {
		switch seg {
		case "", ".":
			continue
		case "..":
			return "", errors.Errorf("path %q escapes the repository: %w", p, remote.ErrInvalidPath)
		}
		segments = append(segments, seg)
	}

	return strings.Join(segments, "/"), nil
}

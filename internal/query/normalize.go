// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import "golang.org/x/text/width"

// Normalize folds full-width and half-width runes to their canonical
// width. IME input such as "ａｉ＋ｓｅｃｕｒｉｔｙ" becomes "ai+security",
// so full-width delimiters are recognized and full-width Latin letters
// pass the charset check. CJK ideographs are unchanged.
func Normalize(q string) string {
	return width.Fold.String(q)
}

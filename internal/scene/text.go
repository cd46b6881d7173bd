/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package scene

// FontAttributes mirrors the toolbar state for the selected text.
type FontAttributes struct {
	FontSize  float32
	Bold      bool
	Italic    bool
	Underline bool
	Align     string
}

func DefaultFontAttributes() FontAttributes {
	return FontAttributes{FontSize: 14, Align: "left"}
}

// FontAttr names a single toolbar action.
type FontAttr uint8

const (
	AttrFontSize FontAttr = iota
	AttrBold
	AttrItalic
	AttrUnderline
	AttrAlignLeft
	AttrAlignCenter
	AttrAlignRight
)

// FontChange is one toolbar action. Size is read for AttrFontSize, On for the
// toggles; alignment actions ignore both.
type FontChange struct {
	Attr FontAttr
	Size float32
	On   bool
}

// ApplyFontChange updates cur and the single selected text shape. It reports
// false and changes nothing unless exactly one text shape is selected.
func ApplyFontChange(sel *Selection, cur *FontAttributes, ch FontChange) bool {
	if sel.Len() != 1 || sel.nodes[0].Kind != KindText || sel.nodes[0].Text == nil {
		return false
	}
	t := sel.nodes[0].Text
	switch ch.Attr {
	case AttrFontSize:
		cur.FontSize = ch.Size
		t.FontSize = ch.Size
	case AttrBold:
		cur.Bold = ch.On
		t.FontStyle = fontStyle(cur.Bold, cur.Italic)
	case AttrItalic:
		cur.Italic = ch.On
		t.FontStyle = fontStyle(cur.Bold, cur.Italic)
	case AttrUnderline:
		cur.Underline = ch.On
		if ch.On {
			t.Decoration = "underline"
		} else {
			t.Decoration = "none"
		}
	case AttrAlignLeft:
		cur.Align, t.Align = "left", "left"
	case AttrAlignCenter:
		cur.Align, t.Align = "center", "center"
	case AttrAlignRight:
		cur.Align, t.Align = "right", "right"
	default:
		return false
	}
	return true
}

func fontStyle(bold, italic bool) string {
	switch {
	case bold && italic:
		return "italic bold"
	case italic:
		return "italic"
	case bold:
		return "bold"
	}
	return "normal"
}

// FontAttributesOf reads the toolbar state back from a text shape.
func FontAttributesOf(s *Shape) (FontAttributes, bool) {
	if s == nil || s.Kind != KindText || s.Text == nil {
		return FontAttributes{}, false
	}
	t := s.Text
	return FontAttributes{
		FontSize:  t.FontSize,
		Bold:      t.FontStyle == "bold" || t.FontStyle == "italic bold",
		Italic:    t.FontStyle == "italic" || t.FontStyle == "italic bold",
		Underline: t.Decoration == "underline",
		Align:     t.Align,
	}, true
}

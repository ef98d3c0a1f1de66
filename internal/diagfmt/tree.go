package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"docsema/internal/comment"
	"docsema/internal/source"
)

// CommentNodeOutput is the JSON form of one comment AST node.
type CommentNodeOutput struct {
	Type     string              `json:"type"`
	Span     string              `json:"span"`
	Name     string              `json:"name,omitempty"`
	Text     string              `json:"text,omitempty"`
	Fields   map[string]any      `json:"fields,omitempty"`
	Children []CommentNodeOutput `json:"children,omitempty"`
}

// FormatCommentPretty печатает дерево комментария с ветками ├─/└─.
func FormatCommentPretty(w io.Writer, nodes *comment.Nodes, root comment.NodeID, fs *source.FileSet) error {
	if nodes.Get(root) == nil {
		return fmt.Errorf("comment node %d not found", root)
	}
	fmt.Fprintln(w, nodeLabel(nodes, root, fs))
	writeChildren(w, nodes, root, fs, "")
	return nil
}

func writeChildren(w io.Writer, nodes *comment.Nodes, id comment.NodeID, fs *source.FileSet, prefix string) {
	children := nodes.Children(id)
	for i, child := range children {
		branch, next := "├─ ", "│  "
		if i == len(children)-1 {
			branch, next = "└─ ", "   "
		}
		fmt.Fprintf(w, "%s%s%s\n", prefix, branch, nodeLabel(nodes, child, fs))
		writeChildren(w, nodes, child, fs, prefix+next)
	}
}

func nodeLabel(nodes *comment.Nodes, id comment.NodeID, fs *source.FileSet) string {
	node := nodes.Get(id)
	if node == nil {
		return "<nil>"
	}
	out := describe(nodes, id)
	var sb strings.Builder
	sb.WriteString(out.Type)
	if out.Name != "" {
		sb.WriteString(" " + out.Name)
	}
	if out.Text != "" {
		sb.WriteString(" " + strconv.Quote(out.Text))
	}
	for _, key := range fieldOrder {
		if v, ok := out.Fields[key]; ok {
			fmt.Fprintf(&sb, " %s=%v", key, v)
		}
	}
	fmt.Fprintf(&sb, " (span: %s)", formatSpan(node.Span, fs))
	return sb.String()
}

var fieldOrder = []string{"args", "direction", "param", "index", "position", "render", "attrs", "close", "closed", "self_closing", "malformed"}

// describe собирает плоское описание узла без детей.
func describe(nodes *comment.Nodes, id comment.NodeID) CommentNodeOutput {
	node := nodes.Get(id)
	out := CommentNodeOutput{Type: node.Kind.String(), Fields: map[string]any{}}
	switch node.Kind {
	case comment.KindText:
		t, _ := nodes.Text(id)
		out.Text = t.Text
	case comment.KindBlockCommand:
		b, _ := nodes.BlockCommand(id)
		out.Name = `\` + nodes.Name(b.Name)
		addArgs(out.Fields, nodes.CollectArgs(b.ArgStart, b.ArgCount))
	case comment.KindParamCommand:
		p, _ := nodes.ParamCommand(id)
		out.Name = `\` + nodes.Name(p.Name)
		out.Fields["direction"] = p.Direction.String()
		if p.HasParam {
			out.Fields["param"] = p.Param
		}
		if p.IsResolved() {
			out.Fields["index"] = p.Index
		} else {
			out.Fields["index"] = "unresolved"
		}
	case comment.KindTParamCommand:
		tp, _ := nodes.TParamCommand(id)
		out.Name = `\` + nodes.Name(tp.Name)
		if tp.HasParam {
			out.Fields["param"] = tp.Param
		}
		if tp.IsResolved() {
			out.Fields["position"] = formatPosition(tp.Position)
		} else {
			out.Fields["position"] = "unresolved"
		}
	case comment.KindInlineCommand:
		ic, _ := nodes.InlineCommand(id)
		out.Name = `\` + nodes.Name(ic.Name)
		out.Fields["render"] = ic.Render.String()
		addArgs(out.Fields, nodes.CollectArgs(ic.ArgStart, ic.ArgCount))
	case comment.KindUnknownCommand:
		u, _ := nodes.UnknownCommand(id)
		out.Name = `\` + nodes.Name(u.Name)
	case comment.KindVerbatimBlock:
		v, _ := nodes.VerbatimBlock(id)
		out.Name = `\` + nodes.Name(v.Name)
		out.Fields["closed"] = v.Closed
		if v.Closed {
			out.Fields["close"] = `\` + nodes.Name(v.CloseName)
		}
	case comment.KindVerbatimBlockLine:
		t, _ := nodes.VerbatimBlockLine(id)
		out.Text = t.Text
	case comment.KindVerbatimLine:
		vl, _ := nodes.VerbatimLine(id)
		out.Name = `\` + nodes.Name(vl.Name)
		out.Text = vl.Text
	case comment.KindHTMLStartTag:
		st, _ := nodes.HTMLStartTag(id)
		out.Name = "<" + st.Name + ">"
		if attrs := nodes.CollectAttrs(st.AttrStart, st.AttrCount); len(attrs) > 0 {
			parts := make([]string, 0, len(attrs))
			for _, a := range attrs {
				if a.HasValue {
					parts = append(parts, a.Name+"="+strconv.Quote(a.Value))
				} else {
					parts = append(parts, a.Name)
				}
			}
			out.Fields["attrs"] = "[" + strings.Join(parts, " ") + "]"
		}
		if st.SelfClosing {
			out.Fields["self_closing"] = true
		}
		if st.Malformed {
			out.Fields["malformed"] = true
		}
	case comment.KindHTMLEndTag:
		et, _ := nodes.HTMLEndTag(id)
		out.Name = "</" + et.Name + ">"
		if et.Malformed {
			out.Fields["malformed"] = true
		}
	}
	if len(out.Fields) == 0 {
		out.Fields = nil
	}
	return out
}

func addArgs(fields map[string]any, args []comment.Argument) {
	if len(args) == 0 {
		return
	}
	texts := make([]string, len(args))
	for i, a := range args {
		texts[i] = a.Text
	}
	fields["args"] = "[" + strings.Join(texts, " ") + "]"
}

func formatPosition(pos []uint32) string {
	parts := make([]string, len(pos))
	for i, p := range pos {
		parts[i] = strconv.FormatUint(uint64(p), 10)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// BuildCommentOutput converts the subtree at root to its JSON form.
func BuildCommentOutput(nodes *comment.Nodes, root comment.NodeID, fs *source.FileSet) CommentNodeOutput {
	node := nodes.Get(root)
	if node == nil {
		return CommentNodeOutput{Type: "Invalid"}
	}
	out := describe(nodes, root)
	out.Span = formatSpan(node.Span, fs)
	for _, child := range nodes.Children(root) {
		out.Children = append(out.Children, BuildCommentOutput(nodes, child, fs))
	}
	return out
}

// FormatCommentJSON writes the comments rooted at roots as a JSON array.
func FormatCommentJSON(w io.Writer, nodes *comment.Nodes, roots []comment.NodeID, fs *source.FileSet) error {
	out := make([]CommentNodeOutput, 0, len(roots))
	for _, root := range roots {
		out = append(out, BuildCommentOutput(nodes, root, fs))
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

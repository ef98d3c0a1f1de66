package commands

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"sort"

	"docsema/internal/comment"
)

// Registry is the builtin command table plus user extensions.
type Registry struct {
	byName map[string]*Info
	names  []string // sorted
}

// NewRegistry returns a registry populated with the builtin commands.
func NewRegistry() *Registry {
	r := &Registry{byName: make(map[string]*Info, len(builtins))}
	for i := range builtins {
		info := builtins[i]
		info.Builtin = true
		r.byName[info.Name] = &info
	}
	r.sortNames()
	return r
}

func (r *Registry) Lookup(name string) (*Info, bool) {
	info, ok := r.byName[name]
	return info, ok
}

// Register adds a user command. Redefining any existing name is an error.
func (r *Registry) Register(info Info) error {
	if info.Name == "" {
		return fmt.Errorf("command without a name")
	}
	if prev, ok := r.byName[info.Name]; ok {
		origin := "user"
		if prev.Builtin {
			origin = "builtin"
		}
		return fmt.Errorf("command %q conflicts with %s %s command", info.Name, origin, prev.Kind)
	}
	if info.Kind == 0 {
		info.Kind = KindBlock
	}
	if info.Kind == KindVerbatimBlock && info.EndName == "" {
		info.EndName = "end" + info.Name
	}
	if info.IsParam && info.IsTParam {
		return fmt.Errorf("command %q cannot be both param and tparam", info.Name)
	}
	if (info.IsParam || info.IsTParam || info.Singleton != SingletonNone) && info.Kind != KindBlock {
		return fmt.Errorf("command %q: param, tparam and singleton require a block command", info.Name)
	}
	info.Builtin = false
	r.byName[info.Name] = &info
	r.sortNames()
	return nil
}

// Names returns all command names in lexical order. Registration is not
// safe for concurrent use; lookups and Names are.
func (r *Registry) Names() []string {
	return r.names
}

func (r *Registry) sortNames() {
	r.names = make([]string, 0, len(r.byName))
	for name := range r.byName {
		r.names = append(r.names, name)
	}
	sort.Strings(r.names)
}

// All returns every Info sorted by name.
func (r *Registry) All() []*Info {
	names := r.Names()
	out := make([]*Info, 0, len(names))
	for _, name := range names {
		out = append(out, r.byName[name])
	}
	return out
}

// Fingerprint identifies the table contents; cached results are keyed by it.
func (r *Registry) Fingerprint() string {
	h := sha256.New()
	for _, info := range r.All() {
		fmt.Fprintf(h, "%s|%d|%d|%d|%d|%t|%t|%t|%s|%d\n",
			info.Name, info.Kind, info.Render, info.Singleton, info.NumArgs,
			info.IsParam, info.IsTParam, info.EmptyAllowed, info.EndName, info.Requires)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// IsVerbatimEnd reports whether name closes some verbatim block.
func (r *Registry) IsVerbatimEnd(name string) bool {
	return slices.ContainsFunc(r.All(), func(info *Info) bool {
		return info.Kind == KindVerbatimBlock && info.EndName == name
	})
}

func block(name string) Info { return Info{Name: name, Kind: KindBlock} }

func inline(name string, render comment.RenderKind) Info {
	return Info{Name: name, Kind: KindInline, Render: render, NumArgs: 1}
}

func verbatim(name, end string) Info {
	return Info{Name: name, Kind: KindVerbatimBlock, EndName: end}
}

func verbatimLine(name string) Info { return Info{Name: name, Kind: KindVerbatimLine} }

var builtins = []Info{
	{Name: "brief", Kind: KindBlock, Singleton: SingletonBrief},
	{Name: "short", Kind: KindBlock, Singleton: SingletonBrief},
	{Name: "returns", Kind: KindBlock, Singleton: SingletonReturns, Requires: RequiresCallable | RequiresNonVoid},
	{Name: "return", Kind: KindBlock, Singleton: SingletonReturns, Requires: RequiresCallable | RequiresNonVoid},
	{Name: "result", Kind: KindBlock, Singleton: SingletonReturns, Requires: RequiresCallable | RequiresNonVoid},
	{Name: "param", Kind: KindBlock, IsParam: true, NumArgs: 1, Requires: RequiresCallable},
	{Name: "tparam", Kind: KindBlock, IsTParam: true, NumArgs: 1, Requires: RequiresTemplate},
	{Name: "deprecated", Kind: KindBlock, EmptyAllowed: true},
	{Name: "throws", Kind: KindBlock, NumArgs: 1},
	{Name: "throw", Kind: KindBlock, NumArgs: 1},
	{Name: "exception", Kind: KindBlock, NumArgs: 1},
	{Name: "retval", Kind: KindBlock, NumArgs: 1},
	block("details"),
	block("author"),
	block("authors"),
	block("note"),
	block("remark"),
	block("remarks"),
	block("see"),
	block("sa"),
	block("since"),
	block("pre"),
	block("post"),
	block("todo"),
	block("warning"),
	block("version"),
	block("par"),
	block("invariant"),
	block("attention"),
	block("bug"),
	block("copyright"),
	block("date"),

	inline("b", comment.RenderBold),
	inline("c", comment.RenderMonospaced),
	inline("p", comment.RenderMonospaced),
	inline("a", comment.RenderEmphasized),
	inline("e", comment.RenderEmphasized),
	inline("em", comment.RenderEmphasized),
	inline("anchor", comment.RenderNormal),
	inline("ref", comment.RenderNormal),
	inline("emoji", comment.RenderNormal),

	verbatim("code", "endcode"),
	verbatim("verbatim", "endverbatim"),
	verbatim("dot", "enddot"),
	verbatim("msc", "endmsc"),
	verbatim("htmlonly", "endhtmlonly"),
	verbatim("latexonly", "endlatexonly"),
	verbatim("rtfonly", "endrtfonly"),
	verbatim("xmlonly", "endxmlonly"),

	verbatimLine("fn"),
	verbatimLine("var"),
	verbatimLine("property"),
	verbatimLine("typedef"),
	verbatimLine("overload"),
	verbatimLine("defgroup"),
	verbatimLine("ingroup"),
	verbatimLine("addtogroup"),
	verbatimLine("weakgroup"),
	verbatimLine("name"),
	verbatimLine("file"),
	verbatimLine("class"),
	verbatimLine("struct"),
	verbatimLine("union"),
	verbatimLine("enum"),
	verbatimLine("namespace"),
	verbatimLine("interface"),
	verbatimLine("def"),
	verbatimLine("page"),
	verbatimLine("mainpage"),
}

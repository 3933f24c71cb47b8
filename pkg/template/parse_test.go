package template_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/promptlane/promptlane/pkg/template"
)

var _ = Describe("Parse", func() {
	It("parses plain text into a single text node", func() {
		t, err := template.Parse("just text")
		Expect(err).NotTo(HaveOccurred())
		Expect(t.Nodes).To(HaveLen(1))
	})

	It("parses interpolation with dotted paths", func() {
		t, err := template.Parse("Hello {{ user.name }}!")
		Expect(err).NotTo(HaveOccurred())
		Expect(t.Nodes).To(HaveLen(3))

		v, ok := t.Nodes[1].(*template.VarNode)
		Expect(ok).To(BeTrue())
		Expect(v.Path).To(Equal([]string{"user", "name"}))
	})

	It("parses if/else/endif blocks", func() {
		t, err := template.Parse("{% if tone %}Be {{ tone }}.{% else %}Be neutral.{% endif %}")
		Expect(err).NotTo(HaveOccurred())
		Expect(t.Nodes).To(HaveLen(1))

		ifn, ok := t.Nodes[0].(*template.IfNode)
		Expect(ok).To(BeTrue())
		Expect(ifn.Cond).To(Equal([]string{"tone"}))
		Expect(ifn.Negated).To(BeFalse())
		Expect(ifn.Then).NotTo(BeEmpty())
		Expect(ifn.Else).NotTo(BeEmpty())
	})

	It("parses negated conditions", func() {
		t, err := template.Parse("{% if not quiet %}loud{% endif %}")
		Expect(err).NotTo(HaveOccurred())

		ifn := t.Nodes[0].(*template.IfNode)
		Expect(ifn.Negated).To(BeTrue())
		Expect(ifn.Cond).To(Equal([]string{"quiet"}))
	})

	It("parses for blocks", func() {
		t, err := template.Parse("{% for item in items %}- {{ item }}\n{% endfor %}")
		Expect(err).NotTo(HaveOccurred())

		forn, ok := t.Nodes[0].(*template.ForNode)
		Expect(ok).To(BeTrue())
		Expect(forn.Var).To(Equal("item"))
		Expect(forn.Path).To(Equal([]string{"items"}))
	})

	It("parses include directives with and without a version", func() {
		t, err := template.Parse(`{% include "style-guide@1.2.0" %}{% include "footer" %}`)
		Expect(err).NotTo(HaveOccurred())

		first := t.Nodes[0].(*template.IncludeNode)
		Expect(first.Slug).To(Equal("style-guide"))
		Expect(first.Version).To(Equal("1.2.0"))

		second := t.Nodes[1].(*template.IncludeNode)
		Expect(second.Slug).To(Equal("footer"))
		Expect(second.Version).To(Equal(""))
	})

	DescribeTable("rejects malformed syntax with a positioned error",
		func(source string) {
			_, err := template.Parse(source)

			var perr *template.ParseError
			Expect(errors.As(err, &perr)).To(BeTrue())
			Expect(perr.Line).To(BeNumerically(">=", 1))
		},
		Entry("unclosed interpolation", "Hello {{ name"),
		Entry("unclosed tag", "{% if tone"),
		Entry("empty expression", "{{ }}"),
		Entry("invalid path", "{{ user..name }}"),
		Entry("unknown tag", "{% loop x %}"),
		Entry("dangling endif", "text {% endif %}"),
		Entry("dangling else", "{% else %}"),
		Entry("unterminated if", "{% if tone %}hi"),
		Entry("unterminated for", "{% for x in xs %}hi"),
		Entry("malformed for", "{% for in xs %}{% endfor %}"),
		Entry("unquoted include", "{% include footer %}"),
		Entry("empty include slug", `{% include "@1.0.0" %}`),
	)

	It("reports the line of a late failure", func() {
		_, err := template.Parse("line one\nline two\n{{ bad..path }}")

		var perr *template.ParseError
		Expect(errors.As(err, &perr)).To(BeTrue())
		Expect(perr.Line).To(Equal(3))
	})

	It("never fails for unknown but well-formed paths", func() {
		_, err := template.Parse("{{ some.unknown.path }}")
		Expect(err).NotTo(HaveOccurred())
	})
})

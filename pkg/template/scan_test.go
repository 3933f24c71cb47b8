package template_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/promptlane/promptlane/pkg/schema"
	"github.com/promptlane/promptlane/pkg/template"
)

func mustParse(source string) *template.Template {
	t, err := template.Parse(source)
	Expect(err).NotTo(HaveOccurred())
	return t
}

var _ = Describe("Scan", func() {
	It("records one descriptor per variable regardless of repeats", func() {
		vars := template.Scan(mustParse("Hello {{ name }}, {{ name }}!"))

		Expect(vars).To(HaveLen(1))
		Expect(vars[0].Name).To(Equal("name"))
		Expect(vars[0].Type).To(Equal(schema.TypeString))
		Expect(vars[0].Required).To(BeTrue())
	})

	It("keeps first-appearance order", func() {
		vars := template.Scan(mustParse("{{ b }} {{ a }} {{ b }}"))

		Expect(vars).To(HaveLen(2))
		Expect(vars[0].Name).To(Equal("b"))
		Expect(vars[1].Name).To(Equal("a"))
	})

	It("builds a JSON parent with children for nested paths", func() {
		vars := template.Scan(mustParse("{{ user.name }} ({{ user.email }})"))

		Expect(vars).To(HaveLen(1))
		Expect(vars[0].Name).To(Equal("user"))
		Expect(vars[0].Type).To(Equal(schema.TypeJSON))
		Expect(vars[0].Children).To(HaveLen(2))
		Expect(vars[0].Children[0].Name).To(Equal("user.name"))
		Expect(vars[0].Children[0].Type).To(Equal(schema.TypeString))
		Expect(vars[0].Children[1].Name).To(Equal("user.email"))
	})

	It("unifies bare and nested use of the same root into one JSON descriptor", func() {
		vars := template.Scan(mustParse("{{ x }} and {{ x.y }}"))

		Expect(vars).To(HaveLen(1))
		Expect(vars[0].Name).To(Equal("x"))
		Expect(vars[0].Type).To(Equal(schema.TypeJSON))
		Expect(vars[0].Children).To(HaveLen(1))
		Expect(vars[0].Children[0].Name).To(Equal("x.y"))
	})

	It("marks a variable optional when its use is guarded by its own condition", func() {
		vars := template.Scan(mustParse("{% if tone %}Be {{ tone }}.{% endif %}"))

		Expect(vars).To(HaveLen(1))
		Expect(vars[0].Name).To(Equal("tone"))
		Expect(vars[0].Required).To(BeFalse())
	})

	It("marks the guard optional when it covers a nested use", func() {
		vars := template.Scan(mustParse("{% if user %}{{ user.name }}{% endif %}"))

		Expect(vars).To(HaveLen(1))
		Expect(vars[0].Required).To(BeFalse())
	})

	It("keeps a variable required when any use is unguarded", func() {
		vars := template.Scan(mustParse("{% if tone %}Be {{ tone }}.{% endif %} Always {{ tone }}."))

		Expect(vars).To(HaveLen(1))
		Expect(vars[0].Required).To(BeTrue())
	})

	It("does not treat an unrelated guard as a fallback", func() {
		vars := template.Scan(mustParse("{% if verbose %}{{ detail }}{% endif %}"))

		Expect(vars).To(HaveLen(2))
		Expect(vars[0].Name).To(Equal("verbose"))
		Expect(vars[0].Type).To(Equal(schema.TypeBoolean))
		Expect(vars[0].Required).To(BeFalse())
		Expect(vars[1].Name).To(Equal("detail"))
		Expect(vars[1].Required).To(BeTrue())
	})

	It("guards the else branch for negated conditions", func() {
		vars := template.Scan(mustParse("{% if not tone %}plain{% else %}{{ tone }}{% endif %}"))

		Expect(vars).To(HaveLen(1))
		Expect(vars[0].Required).To(BeFalse())
	})

	It("types loop targets as JSON and skips loop variables", func() {
		vars := template.Scan(mustParse("{% for item in items %}- {{ item.title }}{% endfor %}"))

		Expect(vars).To(HaveLen(1))
		Expect(vars[0].Name).To(Equal("items"))
		Expect(vars[0].Type).To(Equal(schema.TypeJSON))
		Expect(vars[0].Required).To(BeTrue())
	})

	It("excludes the global namespace", func() {
		vars := template.Scan(mustParse("{{ global.company }} greets {{ name }}"))

		Expect(vars).To(HaveLen(1))
		Expect(vars[0].Name).To(Equal("name"))
	})
})

var _ = Describe("ScanGlobals", func() {
	It("returns referenced global paths without the namespace prefix", func() {
		paths := template.ScanGlobals(mustParse("{{ global.company.name }} — {{ global.motto }}"))

		Expect(paths).To(Equal([]string{"company.name", "motto"}))
	})

	It("deduplicates repeated references", func() {
		paths := template.ScanGlobals(mustParse("{{ global.motto }} {{ global.motto }}"))

		Expect(paths).To(Equal([]string{"motto"}))
	})

	It("ignores non-global paths", func() {
		paths := template.ScanGlobals(mustParse("{{ name }}"))

		Expect(paths).To(BeEmpty())
	})
})

package prompt_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/promptlane/promptlane/pkg/prompt"
	"github.com/promptlane/promptlane/pkg/schema"
	"github.com/promptlane/promptlane/pkg/template"
)

var _ = Describe("Compile", func() {
	It("renders a text prompt with a valid payload", func() {
		out, err := prompt.Compile(&prompt.CompileInput{
			Kind:    prompt.KindText,
			Content: "Hello {{ name }}!",
			Variables: []schema.Variable{
				{Name: "name", Type: schema.TypeString, Required: true},
			},
			Payload: map[string]any{"name": "Test"},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(out.Kind).To(Equal(prompt.KindText))
		Expect(out.Content).To(Equal("Hello Test!"))
	})

	It("fails with MissingVariables for an empty payload", func() {
		_, err := prompt.Compile(&prompt.CompileInput{
			Kind:    prompt.KindText,
			Content: "Hello {{ name }}!",
			Variables: []schema.Variable{
				{Name: "name", Type: schema.TypeString, Required: true},
			},
			Payload: map[string]any{},
		})

		var merr *prompt.MissingVariablesError
		Expect(errors.As(err, &merr)).To(BeTrue())
		Expect(merr.Names).To(Equal([]string{"name"}))
	})

	It("surfaces parse errors before validation", func() {
		_, err := prompt.Compile(&prompt.CompileInput{
			Kind:    prompt.KindText,
			Content: "Hello {{ name",
		})

		var perr *template.ParseError
		Expect(errors.As(err, &perr)).To(BeTrue())
	})

	It("surfaces payload type mismatches", func() {
		_, err := prompt.Compile(&prompt.CompileInput{
			Kind:    prompt.KindText,
			Content: "Hello {{ name }}!",
			Variables: []schema.Variable{
				{Name: "name", Type: schema.TypeString, Required: true},
			},
			Payload: map[string]any{"name": float64(3)},
		})

		var terr *schema.InvalidTypeError
		Expect(errors.As(err, &terr)).To(BeTrue())
		Expect(terr.Name).To(Equal("name"))
	})

	It("applies declared defaults during rendering", func() {
		out, err := prompt.Compile(&prompt.CompileInput{
			Kind:    prompt.KindText,
			Content: "Be {{ tone }}.",
			Variables: []schema.Variable{
				{Name: "tone", Type: schema.TypeString, Default: "neutral"},
			},
			Payload: map[string]any{},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(out.Content).To(Equal("Be neutral."))
	})

	It("lets a declared schema downgrade a scanner-required variable", func() {
		out, err := prompt.Compile(&prompt.CompileInput{
			Kind:    prompt.KindText,
			Content: "Hello {{ name }}!",
			Variables: []schema.Variable{
				{Name: "name", Type: schema.TypeString, Required: false},
			},
			Payload: map[string]any{},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(out.Content).To(Equal("Hello !"))
	})

	It("requires variables an include declares as required", func() {
		_, err := prompt.Compile(&prompt.CompileInput{
			Kind:    prompt.KindText,
			Content: `{% include "style" %}`,
			Includes: []prompt.IncludeRef{
				{
					Slug:    "style",
					Version: "1.0.0",
					Content: "Write for {{ audience }}.",
					Variables: []schema.Variable{
						{Name: "audience", Type: schema.TypeString, Required: true},
					},
				},
			},
			Payload: map[string]any{},
		})

		var merr *prompt.MissingVariablesError
		Expect(errors.As(err, &merr)).To(BeTrue())
		Expect(merr.Names).To(Equal([]string{"audience"}))
	})

	It("renders includes pinned, latest, and transitively shared variables", func() {
		out, err := prompt.Compile(&prompt.CompileInput{
			Kind:    prompt.KindText,
			Content: `{% include "style@1.0.0" %} {% include "footer" %}`,
			Includes: []prompt.IncludeRef{
				{Slug: "style", Version: "1.0.0", Content: "Plain style."},
				{Slug: "style", Version: "2.0.0", Content: "Fancy style."},
				{Slug: "footer", Version: "1.0.0", Content: "— {{ name }}"},
				{Slug: "footer", Version: "1.10.0", Content: "Sincerely, {{ name }}"},
			},
			Payload: map[string]any{"name": "Ada"},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(out.Content).To(Equal("Plain style. Sincerely, Ada"))
	})

	It("fails with IncludeNotFound for an unknown include", func() {
		_, err := prompt.Compile(&prompt.CompileInput{
			Kind:    prompt.KindText,
			Content: `{% include "ghost" %}`,
			Payload: map[string]any{},
		})

		var nferr *prompt.IncludeNotFoundError
		Expect(errors.As(err, &nferr)).To(BeTrue())
	})

	It("requires variables declared by transitively included prompts", func() {
		_, err := prompt.Compile(&prompt.CompileInput{
			Kind:    prompt.KindText,
			Content: `{% include "outer" %}`,
			Includes: []prompt.IncludeRef{
				{Slug: "outer", Version: "1.0.0", Content: `{% include "inner" %}`},
				{
					Slug:    "inner",
					Version: "1.0.0",
					Content: "{{ depth }}",
					Variables: []schema.Variable{
						{Name: "depth", Type: schema.TypeString, Required: true},
					},
				},
			},
			Payload: map[string]any{},
		})

		var merr *prompt.MissingVariablesError
		Expect(errors.As(err, &merr)).To(BeTrue())
		Expect(merr.Names).To(Equal([]string{"depth"}))
	})

	It("ignores include references the template never uses", func() {
		out, err := prompt.Compile(&prompt.CompileInput{
			Kind:    prompt.KindText,
			Content: "No includes here.",
			Includes: []prompt.IncludeRef{
				{
					Slug:    "unused",
					Version: "1.0.0",
					Content: "{{ extra }}",
					Variables: []schema.Variable{
						{Name: "extra", Type: schema.TypeString, Required: true},
					},
				},
			},
			Payload: map[string]any{},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(out.Content).To(Equal("No includes here."))
	})

	It("fails with MissingGlobals for absent global context", func() {
		_, err := prompt.Compile(&prompt.CompileInput{
			Kind:    prompt.KindText,
			Content: "{{ global.company.name }} welcomes you.",
			Global:  map[string]any{"motto": "ship it"},
		})

		var gerr *prompt.MissingGlobalsError
		Expect(errors.As(err, &gerr)).To(BeTrue())
		Expect(gerr.Paths).To(Equal([]string{"company.name"}))
	})

	Describe("chat prompts", func() {
		input := func(payload map[string]any) *prompt.CompileInput {
			return &prompt.CompileInput{
				Kind: prompt.KindChat,
				Messages: []prompt.ChatMessage{
					{Role: prompt.RoleSystem, Content: "You speak for {{ global.company }}."},
					{Role: prompt.RoleUser, Content: "Summarize {{ topic }}."},
				},
				Payload: payload,
				Global:  map[string]any{"company": "Acme"},
			}
		}

		It("renders every message in order with roles preserved", func() {
			out, err := prompt.Compile(input(map[string]any{"topic": "semver"}))

			Expect(err).NotTo(HaveOccurred())
			Expect(out.Kind).To(Equal(prompt.KindChat))
			Expect(out.Messages).To(Equal([]prompt.ChatMessage{
				{Role: prompt.RoleSystem, Content: "You speak for Acme."},
				{Role: prompt.RoleUser, Content: "Summarize semver."},
			}))
		})

		It("unions variable requirements across messages", func() {
			_, err := prompt.Compile(input(map[string]any{}))

			var merr *prompt.MissingVariablesError
			Expect(errors.As(err, &merr)).To(BeTrue())
			Expect(merr.Names).To(Equal([]string{"topic"}))
		})
	})
})

var _ = Describe("ScanSchema", func() {
	It("reports the reconciled schema without rendering", func() {
		vars, err := prompt.ScanSchema(&prompt.CompileInput{
			Kind:    prompt.KindText,
			Content: "{{ a }} {% if b %}{{ b }}{% endif %}",
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(vars).To(HaveLen(2))
		Expect(vars[0].Name).To(Equal("a"))
		Expect(vars[0].Required).To(BeTrue())
		Expect(vars[1].Name).To(Equal("b"))
		Expect(vars[1].Required).To(BeFalse())
	})
})

var _ = Describe("MissingGlobals", func() {
	parse := func(src string) *template.Template {
		t, err := template.Parse(src)
		Expect(err).NotTo(HaveOccurred())
		return t
	}

	It("accepts nested maps and flat dotted keys", func() {
		t := parse("{{ global.company.name }} {{ global.motto }}")

		missing := prompt.MissingGlobals(t, map[string]any{
			"company.name": "Acme",
			"motto":        "ship it",
		})
		Expect(missing).To(BeEmpty())

		missing = prompt.MissingGlobals(t, map[string]any{
			"company": map[string]any{"name": "Acme"},
			"motto":   "ship it",
		})
		Expect(missing).To(BeEmpty())
	})

	It("reports unresolved paths", func() {
		t := parse("{{ global.company.name }}")

		missing := prompt.MissingGlobals(t, map[string]any{"company": map[string]any{}})
		Expect(missing).To(Equal([]string{"company.name"}))
	})
})

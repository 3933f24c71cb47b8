package store_test

import (
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/promptlane/promptlane/pkg/prompt"
	"github.com/promptlane/promptlane/pkg/schema"
	"github.com/promptlane/promptlane/pkg/store"
)

var _ = Describe("Store", func() {
	var dir string

	writeFile := func(name, data string) {
		err := os.WriteFile(filepath.Join(dir, name), []byte(data), 0o600)
		Expect(err).NotTo(HaveOccurred())
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	Describe("Open", func() {
		It("loads text prompts with variables", func() {
			writeFile("greeting.toml", `
slug = "greeting"
version = "1.0.0"
type = "text"
content = "Hello {{ name }}!"

[[variables]]
name = "name"
type = "string"
required = true
`)
			s, err := store.Open(dir, nil)
			Expect(err).NotTo(HaveOccurred())

			p, err := s.Get("greeting", "1.0.0")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Kind).To(Equal(prompt.KindText))
			Expect(p.Content).To(Equal("Hello {{ name }}!"))
			Expect(p.Variables).To(HaveLen(1))
			Expect(p.Variables[0].Name).To(Equal("name"))
			Expect(p.Variables[0].Type).To(Equal(schema.TypeString))
			Expect(p.Variables[0].Required).To(BeTrue())
		})

		It("loads chat prompts with messages", func() {
			writeFile("assistant.toml", `
slug = "assistant"
version = "0.1.0"
type = "chat"

[[messages]]
role = "system"
content = "You are terse."

[[messages]]
role = "user"
content = "{{ question }}"
`)
			s, err := store.Open(dir, nil)
			Expect(err).NotTo(HaveOccurred())

			p, err := s.Get("assistant", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Kind).To(Equal(prompt.KindChat))
			Expect(p.Messages).To(HaveLen(2))
			Expect(p.Messages[0].Role).To(Equal(prompt.RoleSystem))
		})

		It("skips files with invalid versions without failing the load", func() {
			writeFile("good.toml", "slug = \"good\"\nversion = \"1.0.0\"\ncontent = \"ok\"\n")
			writeFile("bad.toml", "slug = \"bad\"\nversion = \"not-semver\"\ncontent = \"no\"\n")

			s, err := store.Open(dir, nil)
			Expect(err).NotTo(HaveOccurred())

			_, err = s.Get("good", "")
			Expect(err).NotTo(HaveOccurred())
			_, err = s.Get("bad", "")
			var nferr *store.NotFoundError
			Expect(errors.As(err, &nferr)).To(BeTrue())
		})

		It("ignores non-toml files", func() {
			writeFile("README.md", "# prompts")
			writeFile("p.toml", "slug = \"p\"\nversion = \"1.0.0\"\ncontent = \"x\"\n")

			s, err := store.Open(dir, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.List()).To(HaveLen(1))
		})
	})

	Describe("Get", func() {
		BeforeEach(func() {
			writeFile("p-1.toml", "slug = \"p\"\nversion = \"1.0.0\"\ncontent = \"one\"\n")
			writeFile("p-2.toml", "slug = \"p\"\nversion = \"1.10.0\"\ncontent = \"ten\"\n")
			writeFile("p-3.toml", "slug = \"p\"\nversion = \"1.9.0\"\ncontent = \"nine\"\n")
		})

		It("resolves latest by semver ordering, not lexically", func() {
			s, err := store.Open(dir, nil)
			Expect(err).NotTo(HaveOccurred())

			p, err := s.Get("p", "latest")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Version).To(Equal("1.10.0"))

			p, err = s.Get("p", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Version).To(Equal("1.10.0"))
		})

		It("resolves pinned versions exactly", func() {
			s, err := store.Open(dir, nil)
			Expect(err).NotTo(HaveOccurred())

			p, err := s.Get("p", "1.9.0")
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Content).To(Equal("nine"))
		})

		It("returns NotFoundError for unknown slugs and versions", func() {
			s, err := store.Open(dir, nil)
			Expect(err).NotTo(HaveOccurred())

			var nferr *store.NotFoundError
			_, err = s.Get("missing", "")
			Expect(errors.As(err, &nferr)).To(BeTrue())

			_, err = s.Get("p", "2.0.0")
			Expect(errors.As(err, &nferr)).To(BeTrue())
		})
	})

	Describe("List", func() {
		It("returns one entry per slug at its latest version, sorted", func() {
			writeFile("b1.toml", "slug = \"beta\"\nversion = \"1.0.0\"\ncontent = \"x\"\n")
			writeFile("b2.toml", "slug = \"beta\"\nversion = \"2.0.0\"\ncontent = \"y\"\n")
			writeFile("a.toml", "slug = \"alpha\"\nversion = \"0.1.0\"\ncontent = \"z\"\n")

			s, err := store.Open(dir, nil)
			Expect(err).NotTo(HaveOccurred())

			list := s.List()
			Expect(list).To(HaveLen(2))
			Expect(list[0].Slug).To(Equal("alpha"))
			Expect(list[1].Slug).To(Equal("beta"))
			Expect(list[1].Version).To(Equal("2.0.0"))
		})
	})

	Describe("Reload", func() {
		It("picks up new files", func() {
			writeFile("a.toml", "slug = \"a\"\nversion = \"1.0.0\"\ncontent = \"x\"\n")
			s, err := store.Open(dir, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.List()).To(HaveLen(1))

			writeFile("b.toml", "slug = \"b\"\nversion = \"1.0.0\"\ncontent = \"y\"\n")
			Expect(s.Reload()).To(Succeed())
			Expect(s.List()).To(HaveLen(2))
		})
	})

	Describe("CompileInput", func() {
		It("wires stored prompts and includes into the compiler", func() {
			writeFile("sig.toml", `
slug = "signature"
version = "1.0.0"
content = "Regards, {{ sender }}"

[[variables]]
name = "sender"
type = "string"
required = true
`)
			writeFile("letter.toml", `
slug = "letter"
version = "1.0.0"
content = """
Dear {{ recipient }},
{% include "signature" %}"""

[[variables]]
name = "recipient"
type = "string"
required = true
`)
			s, err := store.Open(dir, nil)
			Expect(err).NotTo(HaveOccurred())

			p, err := s.Get("letter", "")
			Expect(err).NotTo(HaveOccurred())

			input := s.CompileInput(p, map[string]any{
				"recipient": "Ada",
				"sender":    "Babbage",
			}, nil)

			compiled, err := prompt.Compile(&input)
			Expect(err).NotTo(HaveOccurred())
			Expect(compiled.Content).To(Equal("Dear Ada,\nRegards, Babbage"))
		})
	})

	Describe("IncludeRefs", func() {
		It("offers only text prompts as include candidates", func() {
			writeFile("sig.toml", `
slug = "signature"
version = "1.0.0"
content = "Regards, Babbage"
`)
			writeFile("chat.toml", `
slug = "assistant"
version = "1.0.0"
type = "chat"

[[messages]]
role = "system"
content = "You are terse."
`)
			s, err := store.Open(dir, nil)
			Expect(err).NotTo(HaveOccurred())

			refs := s.IncludeRefs()
			Expect(refs).To(HaveLen(1))
			Expect(refs[0].Slug).To(Equal("signature"))
		})

		It("fails a compile that includes a chat prompt instead of rendering it empty", func() {
			writeFile("chat.toml", `
slug = "assistant"
version = "1.0.0"
type = "chat"

[[messages]]
role = "system"
content = "You are terse."
`)
			writeFile("outer.toml", `
slug = "outer"
version = "1.0.0"
content = """
{% include "assistant" %}"""
`)
			s, err := store.Open(dir, nil)
			Expect(err).NotTo(HaveOccurred())

			p, err := s.Get("outer", "")
			Expect(err).NotTo(HaveOccurred())

			input := s.CompileInput(p, nil, nil)
			_, err = prompt.Compile(&input)

			var notFound *prompt.IncludeNotFoundError
			Expect(errors.As(err, &notFound)).To(BeTrue())
			Expect(notFound.Slug).To(Equal("assistant"))
		})
	})
})

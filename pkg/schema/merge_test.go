package schema_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/promptlane/promptlane/pkg/schema"
)

var _ = Describe("Merge", func() {
	It("preserves first-seen order across own then included", func() {
		own := []schema.Variable{
			{Name: "name", Type: schema.TypeString, Required: true},
			{Name: "tone", Type: schema.TypeString},
		}
		inc := []schema.Variable{
			{Name: "audience", Type: schema.TypeString},
			{Name: "name", Type: schema.TypeString},
		}

		merged := schema.Merge(own, inc)

		names := make([]string, 0, len(merged))
		for _, v := range merged {
			names = append(names, v.Name)
		}
		Expect(names).To(Equal([]string{"name", "tone", "audience"}))
	})

	It("never overwrites type or default once set", func() {
		own := []schema.Variable{
			{Name: "count", Type: schema.TypeNumber, Default: 3},
		}
		inc := []schema.Variable{
			{Name: "count", Type: schema.TypeString, Default: "three"},
		}

		merged := schema.Merge(own, inc)

		Expect(merged).To(HaveLen(1))
		Expect(merged[0].Type).To(Equal(schema.TypeNumber))
		Expect(merged[0].Default).To(Equal(3))
	})

	It("upgrades required when an include requires an optional variable", func() {
		// Required-ness is monotonic: a prompt can become "more required"
		// through an include it does not control. Intentional; do not "fix".
		own := []schema.Variable{
			{Name: "topic", Type: schema.TypeString, Required: false},
		}
		inc := []schema.Variable{
			{Name: "topic", Type: schema.TypeString, Required: true},
		}

		merged := schema.Merge(own, inc)

		Expect(merged).To(HaveLen(1))
		Expect(merged[0].Required).To(BeTrue())
	})

	It("never downgrades required", func() {
		own := []schema.Variable{
			{Name: "topic", Type: schema.TypeString, Required: true},
		}
		inc := []schema.Variable{
			{Name: "topic", Type: schema.TypeString, Required: false},
		}

		merged := schema.Merge(own, inc)

		Expect(merged[0].Required).To(BeTrue())
	})

	It("keeps the first-seen nested shape entirely", func() {
		own := []schema.Variable{
			{Name: "user", Type: schema.TypeJSON, Children: []schema.Variable{
				{Name: "user.name", Type: schema.TypeString},
			}},
		}
		inc := []schema.Variable{
			{Name: "user", Type: schema.TypeJSON, Children: []schema.Variable{
				{Name: "user.email", Type: schema.TypeString},
			}},
		}

		merged := schema.Merge(own, inc)

		Expect(merged).To(HaveLen(1))
		Expect(merged[0].Children).To(HaveLen(1))
		Expect(merged[0].Children[0].Name).To(Equal("user.name"))
	})

	It("merges multiple includes in include order", func() {
		a := []schema.Variable{{Name: "a", Type: schema.TypeString}}
		b := []schema.Variable{{Name: "b", Type: schema.TypeString}}

		merged := schema.Merge(nil, a, b)

		Expect(merged).To(HaveLen(2))
		Expect(merged[0].Name).To(Equal("a"))
		Expect(merged[1].Name).To(Equal("b"))
	})
})

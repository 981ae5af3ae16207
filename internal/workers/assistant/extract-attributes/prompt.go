package extractattributes

import (
	"fmt"
	"strings"
)

// Closed vocabularies offered to the model. Anything outside them is "Other".
var (
	Categories = []string{
		"Indian Wear", "Plus Size", "Western", "Sports Wear",
		"Inner Wear & Sleep Wear", "Lingerie & Sleep Wear",
	}

	IndividualCategories = []string{
		"kurta-sets", "kurtas", "tops", "thermal-tops", "jeans", "skirts", "shorts",
		"trousers", "palazzos", "jumpsuit", "co-ords", "clothing-set", "kurtis", "tunics",
	}

	Genders = []string{"Women", "Men"}

	Colours = []string{
		"Black", "Orange", "Navy Blue", "Red", "Beige", "Yellow", "Green", "Mustard",
		"Teal", "Peach", "Blue", "Sea Green", "Pink", "Burgundy", "Maroon", "Lavender",
		"Purple", "White", "Grey", "Lime Green", "Brown", "Cream", "Rust", "Off White",
		"Turquoise Blue", "Multi", "Mauve", "Assorted", "Magenta", "Fuchsia", "Coral",
		"Olive", "Rose", "Gold", "Fluorescent Green", "Silver", "Nude", "Violet",
		"Charcoal", "Grey Melange", "Khaki", "Coffee Brown", "Taupe", "Copper",
	}
)

// Output keys the model is told to emit. The parser recognizes exactly these.
const (
	KeyCategory           = "Category"
	KeyIndividualCategory = "Individual_category"
	KeyGender             = "category_by_Gender"
	KeyColour             = "colour"
	KeyMoveOn             = "MOVE_ON"
	KeyFollowUpMessage    = "FOLLOW_UP_MESSAGE"
)

// BuildPrompt renders the extraction prompt for a conversation. The output is
// a pure function of its input.
func BuildPrompt(conversation string) string {
	var b strings.Builder

	section := func(title string) {
		b.WriteString("\n## ")
		b.WriteString(title)
		b.WriteString(" ##\n")
	}

	section("CONTEXT")
	b.WriteString("Read this conversation between a shopper and a fashion store assistant:\n")
	b.WriteString(conversation)
	b.WriteString("\n")

	section("TASK")
	b.WriteString("Work out what the shopper is asking for, using only the attributes listed below. ")
	b.WriteString("When several products come up, work on the first or main one. ")
	b.WriteString("Infer from context where it is reasonable, but never add attributes outside this list.\n")

	section("GUIDELINES")
	fmt.Fprintf(&b, "1. Category: pick ONE of %s. Use \"Other\" if none fits. If more than one applies, pick the one closest to the main product.\n",
		strings.Join(Categories, ", "))
	fmt.Fprintf(&b, "2. Individual Category: pick ONE of %s. Use \"Other\" if none fits. It must describe the main product.\n",
		strings.Join(IndividualCategories, ", "))
	fmt.Fprintf(&b, "3. Category by Gender: pick %s. When the conversation does not say, use your best judgement.\n",
		strings.Join(Genders, " or "))
	fmt.Fprintf(&b, "4. Colour: pick from %s. If the colour is not listed, or several colours are mentioned, use \"Other\" or the colour of the main product.\n",
		strings.Join(Colours, ", "))
	b.WriteString("5. Move On: answer \"true\" only when Category, Individual Category and at least one of Colour or Category by Gender are known for the main product. Otherwise answer \"false\".\n")
	b.WriteString("6. Follow-up Message:\n")
	b.WriteString("   - When Move On is \"true\", confirm that you are searching for the main product.\n")
	b.WriteString("   - When Move On is \"false\", ask for the missing information (Category, Individual Category, Colour or Category by Gender).\n")
	b.WriteString("   - When several products were mentioned, say so and confirm you are focusing on the main one.\n")
	b.WriteString("   - Ask specific questions that draw out the missing attribute.\n")
	b.WriteString("   - When the shopper asks for something that is not fashion, reply with a polite error saying only fashion products are available.\n")

	section("IMPORTANT NOTES")
	b.WriteString("- Only fashion products can be shown. Anything else gets a polite error message.\n")
	b.WriteString("- With several products, extract attributes for the first or main product only.\n")
	b.WriteString("- Use only the values listed above. Do not invent new attributes.\n")
	b.WriteString("- When an attribute is not available and cannot reasonably be inferred, write \"NA\".\n")

	section("OUTPUT FORMAT")
	b.WriteString("Answer in exactly this format, one key per line:\n\n")
	fmt.Fprintf(&b, "%s: \"category of the main product\"\n", KeyCategory)
	fmt.Fprintf(&b, "%s: \"individual category of the main product\"\n", KeyIndividualCategory)
	fmt.Fprintf(&b, "%s: \"gender category\"\n", KeyGender)
	fmt.Fprintf(&b, "%s: \"colour of the main product\"\n", KeyColour)
	fmt.Fprintf(&b, "%s: \"true\" or \"false\"\n", KeyMoveOn)
	fmt.Fprintf(&b, "%s: \"your follow-up message\"\n", KeyFollowUpMessage)

	b.WriteString("\nConversation: ")
	b.WriteString(conversation)
	b.WriteString("\nAnswer:\n")

	return b.String()
}

package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_CensoredLoader_Loads_Embedded_Dictionaries(t *testing.T) {
	req := require.New(t)
	loader := NewCensoredLoader(censoredFolder)

	data, err := loader.LoadAll("censored")
	req.NoError(err)

	req.ElementsMatch([]string{"en", "fr"}, data.Languages)
	req.NotEmpty(data.Words)
	// Words are deduplicated across language files
	counts := map[string]int{}
	for _, w := range data.Words {
		counts[w]++
	}
	for w, n := range counts {
		req.Equalf(1, n, "word %q duplicated", w)
	}
}

package naming

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/mcsync/internal/domain"
	"github.com/John-Robertt/mcsync/internal/region"
)

func TestSlotSuffix(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"SLUS_000.01.1", ""},    // 倒数第 6 位是 '0'
		{"SLUS_001.01.1", ""},    // 1 号槽位不带后缀
		{"SLUS_002.01.1", ".1"},  // 2 -> .1
		{"SLUS_003.01.1", ".2"},  // 3 -> .2
		{"SLUS_009.01.1", ".8"},  // 9 -> .8
		{"SLUS-00594-1.mcd", ""}, // 倒数第 6 位是 '-'
		{"x.mcd", ""},            // 不足 6 个字符
		{"", ""},
		{"2.mcd1", ".1"},  // 恰好 6 个字符
		{"中3.mcdx", ".2"}, // 按字符而不是字节计数
		{"a٣b.mcd", ""},   // 非 ASCII 数字不算
	}
	for _, c := range cases {
		assert.Equal(t, c.want, SlotSuffix(c.name), c.name)
	}
}

func TestSlotSuffix_OffByOne(t *testing.T) {
	// 槽位 n 总是映射为 .{n-1}；1 号槽位无后缀。
	for d := '2'; d <= '9'; d++ {
		name := "SLUS_00" + string(d) + ".01.1"
		want := "." + string(d-1)
		assert.Equal(t, want, SlotSuffix(name), name)
	}
}

func TestTitleCase(t *testing.T) {
	cases := map[string]string{
		"final fantasy vii":                      "Final Fantasy Vii",
		"FINAL FANTASY VII":                      "Final Fantasy Vii",
		"  metal   gear\tsolid ":                 "Metal Gear Solid",
		"crash bandicoot 2: cortex strikes back": "Crash Bandicoot 2: Cortex Strikes Back",
		"tony hawk's pro-skater":                 "Tony Hawk's Pro-skater",
		"":                                       "",
		"émile ÉCOLE":                            "Émile École",
		"ΟΔΥΣΣΕΑΣ":                               "Οδυσσεας",
		"ßtraße":                                 "Sstraße",
	}
	for in, want := range cases {
		assert.Equal(t, want, TitleCase(in), in)
	}
}

func TestTitleCase_Idempotent(t *testing.T) {
	inputs := []string{
		"final fantasy vii",
		"MeGa MaN x4",
		"ſtrange ıdle",
		"  spaced   out  ",
		"über straße",
		"ßtraße",
		"ΟΔΥΣΣΕΑΣ ΚΑΙ ΣΥΝ",
	}
	for _, in := range inputs {
		once := TitleCase(in)
		assert.Equal(t, once, TitleCase(once), in)
	}
}

func TestRegion(t *testing.T) {
	tab := region.Default()

	r, err := Region(domain.Code("SLUS-00001"), tab)
	require.NoError(t, err)
	assert.Equal(t, "(USA)", r)

	_, err = Region(domain.Code("ZZZZ-00001"), tab)
	var ve *ViolationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "unknown_prefix", ve.Reason)
	assert.Equal(t, "ZZZZ", ve.Prefix)

	_, err = Region(domain.Code("SLUS00001"), tab)
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "no_dash", ve.Reason)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Final Fantasy Vii (USA).srm",
		FileName("final fantasy vii", "(USA)", "", ""))
	assert.Equal(t, "Final Fantasy Vii (USA).2.srm",
		FileName("final fantasy vii", "(USA)", ".2", DefaultExt))
	assert.Equal(t, "Ape Escape (Europe).1.sav",
		FileName("APE ESCAPE", "(Europe)", ".1", ".sav"))
}

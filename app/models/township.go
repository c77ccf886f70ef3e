package models

// VocabularyVersion identifies the township vocabulary; cached classification
// entries carry it so a vocabulary change can invalidate them.
const VocabularyVersion = "changhua-2023"

// TownshipFailed is the sentinel stored when classification could not resolve
// a valid township for a record (missing result, invalid name, or a failed
// classification call). It never leaves the vocabulary check pass.
const TownshipFailed = "辨識失敗"

// changhuaTownships is the closed vocabulary: the 26 townships of Changhua
// County. Classification output outside this list is rejected.
var changhuaTownships = []string{
	"彰化市",
	"鹿港鎮",
	"和美鎮",
	"線西鄉",
	"伸港鄉",
	"福興鄉",
	"秀水鄉",
	"花壇鄉",
	"芬園鄉",
	"員林市",
	"溪湖鎮",
	"田中鎮",
	"大村鄉",
	"埔鹽鄉",
	"埔心鄉",
	"永靖鄉",
	"社頭鄉",
	"二水鄉",
	"北斗鎮",
	"二林鎮",
	"田尾鄉",
	"埤頭鄉",
	"芳苑鄉",
	"大城鄉",
	"竹塘鄉",
	"溪州鄉",
}

var townshipSet = func() map[string]struct{} {
	s := make(map[string]struct{}, len(changhuaTownships))
	for _, name := range changhuaTownships {
		s[name] = struct{}{}
	}
	return s
}()

// Townships returns the vocabulary in its canonical order.
func Townships() []string {
	out := make([]string, len(changhuaTownships))
	copy(out, changhuaTownships)
	return out
}

// IsValidTownship reports whether name is an exact member of the vocabulary.
// Fuzzy canonicalization of near-miss names lives in internal/vocab; by the
// time a township is written to a record it must pass this check.
func IsValidTownship(name string) bool {
	_, ok := townshipSet[name]
	return ok
}

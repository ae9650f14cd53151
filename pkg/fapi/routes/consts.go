package routes

var (
	BearerAuth = []map[string][]string{
		{"bearer": {}},
	}
)

type Tag string

const (
	TagAuth         Tag = "auth"
	TagTransactions Tag = "transactions"
	TagGeneral      Tag = "general"
)

func (t Tag) String() string { return string(t) }

func AllTags() []string {
	return []string{
		TagAuth.String(),
		TagTransactions.String(),
		TagGeneral.String(),
	}
}

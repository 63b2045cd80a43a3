package commanddomain

import (
	"strconv"
	"strings"

	ledgerdomain "github.com/Black-And-White-Club/scrum-bot/app/modules/ledger/domain"
)

// FormatAmount renders an amount for chat: "1,234.56 coins" from one coin
// up, "5¢" below that and "0.00 coins" for nothing.
func FormatAmount(a ledgerdomain.Amount) string {
	if a == 0 {
		return "0.00 coins"
	}

	v := int64(a)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := v / ledgerdomain.MinorUnitsPerWhole
	minor := v % ledgerdomain.MinorUnitsPerWhole
	if whole == 0 {
		return sign + strconv.FormatInt(minor, 10) + "¢"
	}

	cents := strconv.FormatInt(minor, 10)
	if minor < 10 {
		cents = "0" + cents
	}
	return sign + groupThousands(whole) + "." + cents + " coins"
}

func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

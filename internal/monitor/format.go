package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/yad2watch/yad2watch/internal/extract"
)

// Notification texts are Hebrew and HTML-formatted for Telegram.

const (
	footerTimeLayout = "15:04 - 02/01/2006"
	maxErrorChars    = 200
	maxShownListings = 3
)

func formatChange(url string, newTotal, diff int, listings []extract.Listing, now time.Time) string {
	var b strings.Builder
	if diff > 0 {
		b.WriteString("🚗 <b>רכבים חדשים ביד2!</b>\n\n")
		fmt.Fprintf(&b, "📊 סה״כ עכשיו: %d (%+d חדשים)\n", newTotal, diff)
	} else {
		b.WriteString("📉 <b>שינוי במספר הרכבים</b>\n\n")
		fmt.Fprintf(&b, "📊 סה״כ עכשיו: %d (%+d)\n", newTotal, diff)
	}
	fmt.Fprintf(&b, "🔗 <a href=\"%s\">לצפייה בכל המודעות</a>\n", url)

	if diff > 0 && len(listings) > 0 {
		b.WriteString("\n<b>רכבים חדשים:</b>\n")
		for i, l := range listings {
			if i >= maxShownListings {
				break
			}
			if l.Title != "" {
				fmt.Fprintf(&b, "\n%d. %s", i+1, l.Title)
			}
			if l.Price != "" {
				fmt.Fprintf(&b, "\n   💰 %s", l.Price)
			}
			if l.Link != "" {
				fmt.Fprintf(&b, "\n   🔗 <a href=\"%s\">צפה במודעה</a>", l.Link)
			}
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "\n⏰ %s", now.Format(footerTimeLayout))
	return b.String()
}

func formatWelcome(url string, total int) string {
	return fmt.Sprintf("✅ <b>ניטור יד2 הופעל!</b>\n\n"+
		"📊 סה״כ רכבים כרגע: %d\n"+
		"⏱️ בודק כל 20 דקות (06:00-00:00)\n"+
		"🔗 <a href=\"%s\">קישור לחיפוש</a>\n\n"+
		"תקבל התראה כשיתווספו רכבים חדשים! 🚗", total, url)
}

func formatCounterWarning(url string) string {
	return fmt.Sprintf("⚠️ <b>בעיה בניטור יד2</b>\n\n"+
		"לא הצלחתי לקרוא את מספר המודעות.\n"+
		"הניטור ימשיך בבדיקה הבאה.\n\n"+
		"🔗 <a href=\"%s\">בדוק ידנית</a>", url)
}

func formatStatus(total, checks int, now time.Time) string {
	return fmt.Sprintf("📊 <b>סטטוס ניטור יד2</b>\n\n"+
		"✅ המערכת פעילה\n"+
		"📈 סה״כ רכבים: %d\n"+
		"🔄 בדיקות שבוצעו: %d\n"+
		"⏰ בדיקה אחרונה: %s", total, checks, now.Format("15:04"))
}

func formatError(err error) string {
	text := err.Error()
	if runes := []rune(text); len(runes) > maxErrorChars {
		text = string(runes[:maxErrorChars])
	}
	return fmt.Sprintf("❌ <b>שגיאה בניטור</b>\n\n"+
		"Error: %s\n\n"+
		"הניטור ימשיך בבדיקה הבאה.", text)
}

package formatter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/alexanderramin/punchclock/internal/service"
)

// FormatSession renders one session as a labelled block. Running sessions
// show their elapsed time against now.
func FormatSession(title string, s *domain.WorkSession, now time.Time) string {
	loc := s.Location()
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", StatePill(s.Active()), TruncID(s.ID))
	fmt.Fprintf(&b, "%s %s\n", Dim("Branch:"), branchLabel(s))
	fmt.Fprintf(&b, "%s  %s\n", Dim("Start:"), Timestamp(s.StartTime, loc))
	if s.EndTime != nil {
		fmt.Fprintf(&b, "%s    %s\n", Dim("End:"), Timestamp(*s.EndTime, loc))
	}
	fmt.Fprintf(&b, "%s %s", Dim("Worked:"), Bold(FormatDuration(sessionSpan(s, now))))
	return RenderBox(title, b.String())
}

// FormatSessionList renders a table of sessions. Each row is shown on the
// clock of the zone captured with it.
func FormatSessionList(sessions []*domain.WorkSession, now time.Time) string {
	if len(sessions) == 0 {
		return Dim("No sessions found.") + "\n"
	}
	headers := []string{"ID", "BRANCH", "START", "END", "WORKED", "STATE"}
	rows := make([][]string, 0, len(sessions))
	var total time.Duration
	for _, s := range sessions {
		loc := s.Location()
		end := Dim("--")
		if s.EndTime != nil {
			end = Timestamp(*s.EndTime, loc)
		}
		span := sessionSpan(s, now)
		total += span
		rows = append(rows, []string{
			TruncID(s.ID),
			branchLabel(s),
			Timestamp(s.StartTime, loc),
			end,
			FormatDuration(span),
			StatePill(s.Active()),
		})
	}
	table := RenderTable(headers, rows, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight)
	return RenderBox("Sessions", table+"\n"+Dim("Total: ")+Bold(FormatDuration(total)))
}

// FormatStats renders a period report: one row per day, then the totals.
func FormatStats(st *domain.PeriodStats) string {
	headers := []string{"DATE", "DAY", "HOURS"}
	rows := make([][]string, 0, len(st.DailyBuckets))
	for _, bkt := range st.DailyBuckets {
		hours := FormatHours(bkt.Hours)
		if bkt.Hours == 0 {
			hours = Dim(hours)
		}
		rows = append(rows, []string{bkt.Date.String(), bkt.Label, hours})
	}

	var b strings.Builder
	b.WriteString(RenderTable(headers, rows, AlignLeft, AlignLeft, AlignRight))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", Dim("Total:      "), Bold(FormatHours(st.TotalHours)))
	fmt.Fprintf(&b, "%s %d\n", Dim("Days worked:"), st.DaysWorked)
	fmt.Fprintf(&b, "%s %s", Dim("Average:    "), FormatHours(st.AverageHoursPerDay))

	title := fmt.Sprintf("%s %s .. %s", st.Window.Kind, st.Window.Start, st.Window.End)
	return RenderBox(title, b.String())
}

// FormatDayUsage renders today's total against the user's cap.
func FormatDayUsage(worked, capHours float64) string {
	return fmt.Sprintf("%s %s\n", Dim("Today:"), RenderCapUsage(worked, capHours, 20))
}

// FormatSweepResult renders the counters of one sweep pass.
func FormatSweepResult(r service.SweepResult) string {
	failed := strconv.Itoa(r.Failed)
	if r.Failed > 0 {
		failed = StyleRed.Render(failed)
	}
	return fmt.Sprintf("Checked %d active sessions, stopped %s, failed %s\n",
		r.Checked, StyleYellow.Render(strconv.Itoa(r.Stopped)), failed)
}

// FormatUsers renders the user directory.
func FormatUsers(users []*domain.User) string {
	if len(users) == 0 {
		return Dim("No users found.") + "\n"
	}
	headers := []string{"ID", "NAME", "CAP", "BANK", "NOTIFY"}
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			u.ID,
			u.Name,
			FormatHours(u.NormalWorkingHours),
			yesNo(u.HasBankDetails()),
			yesNo(u.NotificationsEnabled),
		})
	}
	return RenderBox("Users", RenderTable(headers, rows, AlignLeft, AlignLeft, AlignRight))
}

// FormatBranches renders the branch list.
func FormatBranches(branches []*domain.Branch) string {
	if len(branches) == 0 {
		return Dim("No branches found.") + "\n"
	}
	rows := make([][]string, 0, len(branches))
	for _, b := range branches {
		rows = append(rows, []string{b.ID, b.Name})
	}
	return RenderBox("Branches", RenderTable([]string{"ID", "NAME"}, rows))
}

// FormatNotifications renders a user's notifications, newest first.
func FormatNotifications(list []*domain.Notification, loc *time.Location) string {
	if len(list) == 0 {
		return Dim("No notifications.") + "\n"
	}
	rows := make([][]string, 0, len(list))
	for _, n := range list {
		rows = append(rows, []string{
			Timestamp(n.CreatedAt, loc),
			string(n.Kind),
			n.Title,
			n.Message,
		})
	}
	return RenderBox("Notifications", RenderTable([]string{"WHEN", "KIND", "TITLE", "MESSAGE"}, rows))
}

func branchLabel(s *domain.WorkSession) string {
	if s.BranchName != "" {
		return s.BranchName
	}
	return TruncID(s.BranchID)
}

func sessionSpan(s *domain.WorkSession, now time.Time) time.Duration {
	end := now
	if s.EndTime != nil {
		end = *s.EndTime
	}
	return end.Sub(s.StartTime)
}

func yesNo(v bool) string {
	if v {
		return StyleGreen.Render("yes")
	}
	return StyleDim.Render("no")
}

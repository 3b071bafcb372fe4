package stats

import (
	"sort"
	"time"

	"github.com/theirongolddev/aislog/internal/model"
)

// SessionAccum pairs a session with its already-built accumulator, the form
// the stats cache restores without re-parsing the file.
type SessionAccum struct {
	Session model.Session
	Acc     *Accumulator
}

// ProjectAccum groups one project's session accumulators.
type ProjectAccum struct {
	Project  model.Project
	Sessions []SessionAccum
}

func accumulateSessions(sessions []SessionData, policy Policy) []SessionAccum {
	accs := make([]SessionAccum, 0, len(sessions))
	for _, sd := range sessions {
		accs = append(accs, SessionAccum{Session: sd.Session, Acc: Accumulate(sd.Messages, policy)})
	}
	return accs
}

// ProjectSummary reduces one project's sessions into an aggregate view. The
// reduction works over per-session accumulators, so every total equals the
// sum of the per-session totals under the same policy.
func ProjectSummary(projectName string, sessions []SessionData, policy Policy, breakThreshold time.Duration) *model.ProjectStatsSummary {
	return ProjectSummaryOf(projectName, accumulateSessions(sessions, policy), breakThreshold)
}

// ProjectSummaryOf reduces pre-built session accumulators.
func ProjectSummaryOf(projectName string, sessions []SessionAccum, breakThreshold time.Duration) *model.ProjectStatsSummary {
	merged := NewAccumulator()
	sessionDates := make(map[string]int)

	for _, sa := range sessions {
		for _, date := range sa.Acc.ActiveDates() {
			sessionDates[date]++
		}
		merged.Merge(sa.Acc, breakThreshold)
	}

	totalTokens := merged.Tokens.Total()
	totalDuration := merged.Duration(breakThreshold)

	summary := &model.ProjectStatsSummary{
		ProjectName:          projectName,
		TotalSessions:        len(sessions),
		TotalMessages:        merged.Messages,
		TotalTokens:          totalTokens,
		TokenDistribution:    merged.Tokens,
		TotalSessionDuration: totalDuration,
		MostActiveHour:       mostActiveHour(merged),
		MostUsedTools:        toolStats(merged),
		DailyStats:           dailyStats(merged, sessionDates),
		ActivityHeatmap:      heatmapCells(merged),
	}
	if n := uint64(len(sessions)); n > 0 {
		summary.AvgTokensPerSession = totalTokens / n
		summary.AvgSessionDuration = totalDuration / uint32(n)
	}
	return summary
}

// GlobalSummary reduces every project's sessions into the cross-provider
// view: provider distribution, model distribution, top projects by tokens,
// daily activity, and the observed date range.
func GlobalSummary(projects []ProjectData, policy Policy, breakThreshold time.Duration) *model.GlobalStatsSummary {
	accums := make([]ProjectAccum, 0, len(projects))
	for _, pd := range projects {
		accums = append(accums, ProjectAccum{
			Project:  pd.Project,
			Sessions: accumulateSessions(pd.Sessions, policy),
		})
	}
	return GlobalSummaryOf(accums, breakThreshold)
}

// GlobalSummaryOf reduces pre-built project accumulators.
func GlobalSummaryOf(projects []ProjectAccum, breakThreshold time.Duration) *model.GlobalStatsSummary {
	merged := NewAccumulator()
	sessionDates := make(map[string]int)
	providerAgg := make(map[model.ProviderID]*model.ProviderUsageStats)
	var rankings []model.ProjectRanking
	var totalSessions int

	for _, pd := range projects {
		projAcc := NewAccumulator()
		for _, sa := range pd.Sessions {
			for _, date := range sa.Acc.ActiveDates() {
				sessionDates[date]++
			}
			projAcc.Merge(sa.Acc, breakThreshold)
		}
		merged.Merge(projAcc, breakThreshold)
		totalSessions += len(pd.Sessions)

		pid := pd.Project.Provider
		agg := providerAgg[pid]
		if agg == nil {
			agg = &model.ProviderUsageStats{ProviderID: string(pid)}
			providerAgg[pid] = agg
		}
		agg.Projects++
		agg.Sessions += uint32(len(pd.Sessions))
		agg.Messages += projAcc.Messages
		agg.Tokens += projAcc.Tokens.Total()

		rankings = append(rankings, model.ProjectRanking{
			ProjectName: pd.Project.Name,
			Sessions:    uint32(len(pd.Sessions)),
			Messages:    projAcc.Messages,
			Tokens:      projAcc.Tokens.Total(),
		})
	}

	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].Tokens != rankings[j].Tokens {
			return rankings[i].Tokens > rankings[j].Tokens
		}
		return rankings[i].ProjectName < rankings[j].ProjectName
	})
	if len(rankings) > 10 {
		rankings = rankings[:10]
	}

	providers := make([]model.ProviderUsageStats, 0, len(providerAgg))
	for _, id := range model.AllProviders() {
		if agg, ok := providerAgg[id]; ok {
			providers = append(providers, *agg)
		}
	}

	return &model.GlobalStatsSummary{
		TotalProjects:               uint32(len(projects)),
		TotalSessions:               uint32(totalSessions),
		TotalMessages:               merged.Messages,
		TotalTokens:                 merged.Tokens.Total(),
		TotalSessionDurationMinutes: merged.Duration(breakThreshold),
		TokenDistribution:           merged.Tokens,
		MostUsedTools:               toolStats(merged),
		ProviderDistribution:        providers,
		ModelDistribution:           modelStats(merged),
		TopProjects:                 rankings,
		DailyStats:                  dailyStats(merged, sessionDates),
		ActivityHeatmap:             heatmapCells(merged),
		DateRange:                   dateRange(merged),
	}
}

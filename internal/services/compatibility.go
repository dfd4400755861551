package services

import (
  "fmt"
  "math"
  "strings"

  "github.com/yungbote/studymatch-backend/internal/types"
)

// Rule-based compatibility weights. They sum to 1.0.
const (
  subjectWeight       = 0.30
  scheduleWeight      = 0.25
  learningStyleWeight = 0.15
  examGoalWeight      = 0.10
  streakWeight        = 0.10
  behaviorWeight      = 0.10

  // Placeholder behavior signal until real session telemetry feeds scoring.
  behaviorBaseline = 0.7

  streakWindowDays = 30.0
)

const reasonSeparator = " • "

const fallbackReason = "Potential study partner match"

// CalculateCompatibility is a pure, symmetric score over two profiles,
// rounded into [0,100].
func CalculateCompatibility(p1, p2 *types.Profile) int {
  score := 0.0

  score += subjectWeight * listOverlap(p1.Subjects, p2.Subjects)
  score += scheduleWeight * listOverlap(p1.PreferredTimes, p2.PreferredTimes)

  if p1.LearningStyle != nil && p2.LearningStyle != nil {
    if *p1.LearningStyle == *p2.LearningStyle {
      score += learningStyleWeight
    } else {
      score += learningStyleWeight * 0.5
    }
  }

  if p1.ExamGoal != nil && p2.ExamGoal != nil {
    if strings.EqualFold(*p1.ExamGoal, *p2.ExamGoal) {
      score += examGoalWeight
    } else {
      score += examGoalWeight * 0.3
    }
  }

  streakDiff := math.Abs(float64(p1.StudyStreak - p2.StudyStreak))
  score += streakWeight * math.Max(0, 1.0-streakDiff/streakWindowDays)

  score += behaviorWeight * behaviorBaseline

  return int(math.Round(score * 100))
}

// listOverlap is the Jaccard similarity of two case-insensitive string sets.
// Empty input on either side counts as no overlap.
func listOverlap(list1, list2 []string) float64 {
  if len(list1) == 0 || len(list2) == 0 {
    return 0.0
  }
  set1 := lowerSet(list1)
  set2 := lowerSet(list2)

  intersection := 0
  for v := range set1 {
    if _, ok := set2[v]; ok {
      intersection++
    }
  }
  union := len(set2)
  for v := range set1 {
    if _, ok := set2[v]; !ok {
      union++
    }
  }
  return float64(intersection) / float64(union)
}

func lowerSet(list []string) map[string]struct{} {
  set := make(map[string]struct{}, len(list))
  for _, v := range list {
    set[strings.ToLower(v)] = struct{}{}
  }
  return set
}

// GenerateMatchReason builds the deterministic rule-based explanation for a
// pair of profiles. Factors appear in a fixed order; commonSubjects keeps
// p1's insertion order so repeated calls produce identical text.
func GenerateMatchReason(p1, p2 *types.Profile) string {
  var reasons []string

  if common := commonSubjects(p1.Subjects, p2.Subjects, 2); len(common) > 0 {
    reasons = append(reasons, "Both study "+strings.Join(common, ", "))
  }

  if len(commonSubjects(p1.PreferredTimes, p2.PreferredTimes, 1)) > 0 {
    reasons = append(reasons, "Similar study schedule")
  }

  if p1.LearningStyle != nil && p2.LearningStyle != nil && *p1.LearningStyle == *p2.LearningStyle {
    reasons = append(reasons, "Same learning style")
  }

  if p1.ExamGoal != nil && p2.ExamGoal != nil && strings.EqualFold(*p1.ExamGoal, *p2.ExamGoal) {
    reasons = append(reasons, fmt.Sprintf("Same exam goal: %s", *p1.ExamGoal))
  }

  if len(reasons) == 0 {
    return fallbackReason
  }
  return strings.Join(reasons, reasonSeparator)
}

func commonSubjects(list1, list2 []string, limit int) []string {
  if len(list1) == 0 || len(list2) == 0 {
    return nil
  }
  set2 := lowerSet(list2)
  var common []string
  for _, v := range list1 {
    if _, ok := set2[strings.ToLower(v)]; ok {
      common = append(common, v)
      if len(common) == limit {
        break
      }
    }
  }
  return common
}

package main

import (
	"context"
	"fmt"

	"github.com/openlab-uninorte/aula/core/activity"
)

// activate opens an assessment window from the command line, for operators
// recovering from a teacher who cannot reach the portal.
func (cli *commandLine) activate(activityID, label, timeUnit string, duration int, isPublic bool) error {
	ctx := context.Background()

	if duration < 1 {
		return fmt.Errorf("invalid duration %d", duration)
	}
	if timeUnit != "minutes" && timeUnit != "hours" {
		return fmt.Errorf("invalid time unit %q", timeUnit)
	}

	act, err := cli.actRepo.GetActivityByID(ctx, activityID)
	if err != nil {
		return err
	}
	if act.IsAssessment && act.Deadline != nil {
		return activity.ErrAlreadyActivated
	}

	aa := activity.ActivateAssessment{
		Label:    label,
		IsPublic: isPublic,
		Duration: duration,
		TimeUnit: timeUnit,
	}
	deadline := activity.NowFunc().Add(aa.Window())
	if err = cli.actRepo.ActivateAssessment(ctx, act.ID, aa.Label, aa.IsPublic, deadline); err != nil {
		return err
	}

	fmt.Printf("assessment %q opened until %s\n", label, deadline.Format("Mon, 02 Jan 2006 15:04 MST"))
	return nil
}

package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/openlab-uninorte/aula/core/activity"
	"github.com/openlab-uninorte/aula/core/course"
	"github.com/openlab-uninorte/aula/core/user"
	"github.com/openlab-uninorte/aula/storage/database/dummy"
)

func setup(t *testing.T) *commandLine {
	t.Helper()
	db := dummy.NewDB()
	return &commandLine{
		usrRepo:    dummy.NewUserRepository(db),
		courseRepo: dummy.NewCourseRepository(db),
		actRepo:    dummy.NewActivityRepository(db),
	}
}

func createUser(t *testing.T, cli *commandLine, name, uname, email, pwd string) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     email,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("createUser() failed: %v", err)
		}
	}
	usr, err := cli.usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

type cliTest struct {
	name    string
	args    []string // without program name
	pwd     string
	wantErr error
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)
	usr := createUser(t, cli, "User", "awe", "awe@test.cd", "mdr")

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, pwd: "lol", wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, pwd: "lol"},
		{name: "reset with email", args: []string{"resetpassword", "-username", usr.Email}, pwd: "lmao"},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			return []byte(tt.pwd), nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := cli.usrRepo.GetUserByID(context.Background(), usr.ID)
				if err != nil {
					t.Fatalf("GetUserByID() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("S3cret!pwd"), nil }

	if err := cli.run([]string{"admin", "adduser", "-username", "prof", "-email", "prof@test.cd", "-admin"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}

	usr, err := cli.usrRepo.GetUserByUsernameOrEmail(context.Background(), "prof")
	if err != nil {
		t.Fatalf("GetUserByUsernameOrEmail() failed: %v", err)
	}
	if !usr.IsActive {
		t.Error("user should be active")
	}
	if !usr.IsAdmin() {
		t.Error("user should be admin")
	}
	if err := usr.CheckPassword("S3cret!pwd"); err != nil {
		t.Errorf("CheckPassword() failed: %v", err)
	}

	// running again updates the same user
	if err := cli.run([]string{"admin", "adduser", "-username", "prof", "-email", "prof@test.cd"}); err != nil {
		t.Fatalf("cli.run() failed: %v", err)
	}
	users, err := cli.usrRepo.QueryAllUsers(context.Background())
	if err != nil {
		t.Fatalf("QueryAllUsers() failed: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("expected 1 user, got %d", len(users))
	}
}

func Test_commandLine_activate(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	act, err := cli.actRepo.CreateActivity(ctx, activity.Activity{Name: "Sprint Review", Scores: activity.ScoreMap{}})
	if err != nil {
		t.Fatalf("CreateActivity() failed: %v", err)
	}

	tests := []cliTest{
		{name: "no flags", args: []string{"activate"}, wantErr: errHelp},
		{name: "no duration", args: []string{"activate", "-activity", act.ID, "-label", "Review"}, wantErr: errHelp},
		{name: "activity not found", args: []string{"activate", "-activity", "lol", "-label", "Review", "-duration", "30"}, wantErr: activity.ErrNotFound},
		{name: "activates", args: []string{"activate", "-activity", act.ID, "-label", "Review", "-duration", "2", "-unit", "hours"}},
		{name: "already activated", args: []string{"activate", "-activity", act.ID, "-label", "Review", "-duration", "30"}, wantErr: activity.ErrAlreadyActivated},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	act, err = cli.actRepo.GetActivityByID(ctx, act.ID)
	if err != nil {
		t.Fatalf("GetActivityByID() failed: %v", err)
	}
	if !act.IsAssessment || act.Deadline == nil {
		t.Fatal("activity should carry an assessment deadline")
	}
	if until := time.Until(*act.Deadline); until <= time.Hour || until > 2*time.Hour {
		t.Errorf("deadline %s not ~2h away", act.Deadline)
	}
}

func Test_commandLine_results(t *testing.T) {
	cli := setup(t)
	ctx := context.Background()

	crs, err := cli.courseRepo.CreateCourse(ctx, course.Course{
		Name:     "Algorithms",
		Teacher:  "Prof",
		Students: []string{"Alice", "Bob"},
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	act, err := cli.actRepo.CreateActivity(ctx, activity.Activity{
		Name:     "Sprint Review",
		CourseID: crs.ID,
		Scores:   activity.ScoreMap{"Bob": {"Alice": {4, 4, 4, 4}}},
	})
	if err != nil {
		t.Fatalf("CreateActivity() failed: %v", err)
	}

	tests := []cliTest{
		{name: "no activity flag", args: []string{"results"}, wantErr: errHelp},
		{name: "activity not found", args: []string{"results", "-activity", "lol"}, wantErr: activity.ErrNotFound},
		{name: "prints averages", args: []string{"results", "-activity", act.ID}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

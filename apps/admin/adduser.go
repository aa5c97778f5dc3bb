package main

import (
	"context"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/Ma114119/Combits-2025/core"
	"github.com/Ma114119/Combits-2025/core/user"
)

// addUser creates a user, skipping the welcome email.
func (cli *commandLine) addUser(name, email, university, semester, pwd string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)

	if err := cli.usrRepo.CheckEmailUniqueness(ctx, email); err != nil {
		return err
	}

	usr := user.User{
		Name:       core.CleanString(name),
		Email:      email,
		University: null.NewString(university, university != ""),
		Semester:   null.NewString(semester, semester != ""),
		CreatedAt:  time.Now().UTC(),
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err := cli.usrRepo.CreateUser(ctx, usr)
	return err
}

package mbtassist_test

import (
	"fmt"

	"github.com/aretw0/mbtassist"
	"github.com/aretw0/mbtassist/pkg/domain"
)

func Example() {
	a := mbtassist.New()
	g := a.Graph()

	login := g.AddNode("Login")
	home := g.AddNode("Home")
	_ = g.SetInitial(login.ID)
	home.Properties.Set(domain.KeyExpectedResult, domain.String("Welcome"))
	submit := g.AddTransition(login, home, "submit")
	submit.Properties.Set(domain.KeyInputData, domain.String("bob / secret"))
	g.AddTransition(home, login, "logout")

	res := a.Generate()
	for _, tc := range res.TestCases {
		for i, s := range tc.Steps {
			fmt.Printf("#%d.%d %s [%s] -> %s\n", tc.ID, i+1, s.Action, s.Input, s.Expected)
		}
	}
	// Output:
	// #1.1 submit [bob / secret] -> Welcome
	// #1.2 logout [N/A] -> N/A
}

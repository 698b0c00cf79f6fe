package virtualtime_test

import (
	"fmt"

	"github.com/joeycumines/go-rxsched/disposable"
	"github.com/joeycumines/go-rxsched/virtualtime"
)

func ExampleScheduler() {
	s, err := virtualtime.New(100)
	if err != nil {
		panic(err)
	}

	tick := func(name string) func() (disposable.Disposable, error) {
		return func() (disposable.Disposable, error) {
			fmt.Println(s.Now(), name)
			return nil, nil
		}
	}

	_, _ = s.ScheduleRelative(20, tick(`second`))
	_, _ = s.ScheduleRelative(10, tick(`first`))
	cancel, _ := s.ScheduleRelative(15, tick(`cancelled`))
	cancel.Dispose()

	s.Start()
	fmt.Println(`done at`, s.Now())

	//output:
	//110 first
	//120 second
	//done at 120
}

package utils

import (
	"os"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/studylog/internal/constants"
)

var processesFunc = ps.Processes

// OtherInstances returns the PIDs of running studylog processes other than
// the current one.
func OtherInstances() ([]int, error) {
	procs, err := processesFunc()
	if err != nil {
		return nil, err
	}
	self := os.Getpid()
	var pids []int
	for _, p := range procs {
		if p.Pid() == self {
			continue
		}
		if strings.TrimSuffix(p.Executable(), ".exe") == constants.AppName {
			pids = append(pids, p.Pid())
		}
	}
	return pids, nil
}

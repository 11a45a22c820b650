package definition

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
	"go.uber.org/multierr"
)

// validate checks that the graph is complete and well formed.
// Every violation is reported, not just the first.
func validate(cfg Config) error {
	var errs error

	switch {
	case cfg.Name == "":
		errs = multierr.Append(errs, domain.Definitionf("journey name cannot be empty"))
	case domain.ContainsSeparator(cfg.Name):
		errs = multierr.Append(errs, domain.Definitionf("journey name '%s' cannot contain '%s' or '%s'",
			cfg.Name, domain.JourneyNameSeparator, domain.StageSeparator))
	}

	if cfg.Transitions == nil {
		return multierr.Append(errs, domain.Definitionf("journey '%s' has no transition table", cfg.Name))
	}

	if cfg.Start == nil {
		errs = multierr.Append(errs, domain.Definitionf("journey '%s' has no start stage", cfg.Name))
	} else if _, ok := cfg.Stages[cfg.Start.ID]; !ok {
		errs = multierr.Append(errs, domain.Definitionf("start stage '%s' of journey '%s' is not registered",
			cfg.Start.Name, cfg.Name))
	}

	for _, stage := range cfg.Transitions.Stages() {
		if _, ok := cfg.Stages[stage.ID]; !ok {
			errs = multierr.Append(errs, domain.Definitionf("stage '%s' has transitions but is not registered", stage.Name))
		}
		for _, event := range cfg.Transitions.Events(stage.ID) {
			action, _ := cfg.Transitions.Get(stage.ID, event)
			where := fmt.Sprintf("%s, event '%s'", stage, event)
			errs = multierr.Append(errs, checkAction(cfg, where, action))
		}
	}

	for _, id := range sortedDecisionIDs(cfg.Decisions) {
		dec := cfg.Decisions[id]
		where := dec.Stage.String()
		if dec.Logic == nil {
			errs = multierr.Append(errs, domain.Definitionf("%s has no conditions defined", where))
			continue
		}
		if dec.Logic.Decide == nil {
			errs = multierr.Append(errs, domain.Definitionf("%s has no decider", where))
		}
		if len(dec.Logic.Conditions) == 0 && dec.Logic.Otherwise == nil {
			errs = multierr.Append(errs, domain.Definitionf("%s has no conditions defined", where))
		}
		for key, action := range dec.Logic.Conditions {
			errs = multierr.Append(errs, checkAction(cfg, fmt.Sprintf("%s, condition '%s'", where, key), action))
		}
		if dec.Logic.Otherwise != nil {
			errs = multierr.Append(errs, checkAction(cfg, where+", otherwise", dec.Logic.Otherwise))
		}
	}

	if errs == nil {
		errs = detectDecisionCycles(cfg.Decisions)
	}

	return errs
}

func checkAction(cfg Config, where string, action domain.TransitionAction) error {
	switch a := action.(type) {
	case domain.Move:
		node := domain.Unwrap(a.Target)
		if node == nil {
			return domain.Definitionf("%s has a move without a target", where)
		}
		switch target := node.(type) {
		case *domain.Stage:
			if _, ok := cfg.Stages[target.ID]; !ok {
				return domain.Definitionf("%s moves to stage '%s' which is not registered", where, target.Name)
			}
			return nil
		case *domain.DecisionStage:
			if _, ok := cfg.Decisions[target.ID]; !ok {
				return domain.Definitionf("%s moves to decision '%s' which is not registered", where, target.Name)
			}
			if a.Direction == domain.Backward {
				return domain.Definitionf("%s cannot move back to decision '%s'", where, target.Name)
			}
			return nil
		default:
			return domain.Definitionf("%s has a move without a target", where)
		}

	case *domain.Branch:
		var errs error
		if (a.Supplier == nil) == (a.Converter == nil) {
			errs = multierr.Append(errs, domain.Definitionf("%s branch needs exactly one of argument supplier or converter", where))
		}
		if len(a.Conditions) == 0 && a.Otherwise == nil {
			errs = multierr.Append(errs, domain.Definitionf("%s branch has no conditions", where))
		}
		for key, next := range a.Conditions {
			errs = multierr.Append(errs, checkAction(cfg, fmt.Sprintf("%s when '%s'", where, key), next))
		}
		if a.Otherwise != nil {
			errs = multierr.Append(errs, checkAction(cfg, where+" otherwise", a.Otherwise))
		}
		return errs

	case nil:
		return domain.Definitionf("no transition action was defined for %s", where)

	default:
		return domain.Definitionf("%s has unknown action type %T", where, action)
	}
}

// detectDecisionCycles rejects decision stages that can lead back to
// themselves without reaching a stage, since resolution would never end.
func detectDecisionCycles(decisions map[string]Decision) error {
	visited := make(map[string]bool)
	onPath := make(map[string]bool)

	var dfs func(id string, path []string) error
	dfs = func(id string, path []string) error {
		visited[id] = true
		onPath[id] = true
		path = append(path, decisions[id].Stage.Name)

		for _, next := range decisionTargets(decisions[id].Logic) {
			if _, ok := decisions[next]; !ok {
				continue
			}
			if onPath[next] {
				cycle := append(path, decisions[next].Stage.Name)
				return domain.Definitionf("decision cycle detected: %s", strings.Join(cycle, " -> "))
			}
			if !visited[next] {
				if err := dfs(next, path); err != nil {
					return err
				}
			}
		}

		onPath[id] = false
		return nil
	}

	for _, id := range sortedDecisionIDs(decisions) {
		if !visited[id] {
			if err := dfs(id, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// decisionTargets lists the ids of decision stages reachable in one step.
func decisionTargets(logic *domain.DecisionLogic) []string {
	if logic == nil {
		return nil
	}
	var out []string
	var walk func(a domain.TransitionAction)
	walk = func(a domain.TransitionAction) {
		switch a := a.(type) {
		case domain.Move:
			if ds, ok := domain.Unwrap(a.Target).(*domain.DecisionStage); ok {
				out = append(out, ds.ID)
			}
		case *domain.Branch:
			for _, key := range sortedKeys(a.Conditions) {
				walk(a.Conditions[key])
			}
			if a.Otherwise != nil {
				walk(a.Otherwise)
			}
		}
	}
	for _, key := range sortedKeys(logic.Conditions) {
		walk(logic.Conditions[key])
	}
	if logic.Otherwise != nil {
		walk(logic.Otherwise)
	}
	return out
}

func sortedDecisionIDs(decisions map[string]Decision) []string {
	ids := make([]string, 0, len(decisions))
	for id := range decisions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedKeys(m map[string]domain.TransitionAction) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

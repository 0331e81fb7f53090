package dsst

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestPropagationError(t *testing.T) {
	err := newPropagationError(KindMassNonPositive, testEpoch, 6, ErrMassNonPositive)
	wrapped := fmt.Errorf("sampling: %w", err)
	if !errors.Is(wrapped, ErrMassNonPositive) {
		t.Fatal("the sentinel should be reachable")
	}
	var perr *PropagationError
	if !errors.As(wrapped, &perr) {
		t.Fatal("the propagation error should be reachable")
	}
	if perr.Element != 6 || !perr.DT.Equal(testEpoch) || perr.Kind != KindMassNonPositive {
		t.Fatalf("invalid context: %+v", perr)
	}
	if errKind(wrapped) != KindMassNonPositive {
		t.Fatalf("errKind=%s", errKind(wrapped))
	}
	msg := err.Error()
	if !strings.Contains(msg, "mass error") || !strings.Contains(msg, "element 6") {
		t.Fatalf("unexpected message: %s", msg)
	}
	noElement := newPropagationError(KindForceModel, testEpoch, -1, ErrForceModel)
	if strings.Contains(noElement.Error(), "element") {
		t.Fatalf("unexpected message: %s", noElement)
	}
}

func TestErrorKinds(t *testing.T) {
	if errKind(nil) != 0 || errKind(errors.New("plain")) != 0 {
		t.Fatal("non propagation errors have no kind")
	}
	for kind, exp := range map[ErrorKind]string{KindMassNonPositive: "mass", KindConfiguration: "configuration", KindForceModel: "force", 0: "unknown"} {
		if kind.String() != exp {
			t.Fatalf("%d: %s != %s", kind, kind, exp)
		}
	}
}

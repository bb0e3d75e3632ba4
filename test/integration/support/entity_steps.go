package support

import (
	"fmt"
	"strings"

	"github.com/cucumber/godog"

	"github.com/vineeth3458/Medical-assistance-using-OCR/internal/terms"
)

func (testCtx *TestContext) theEntitiesShouldIncludeFor(category, canonical string) error {
	res, err := testCtx.requireResult()
	if err != nil {
		return err
	}
	for _, e := range res.Entities {
		if e.Category == terms.Category(category) && e.Canonical == canonical {
			return nil
		}
	}
	return fmt.Errorf("no %s entity with canonical form %q among %v", category, canonical, res.Entities)
}

func (testCtx *TestContext) theEntitiesShouldNotInclude(canonical string) error {
	res, err := testCtx.requireResult()
	if err != nil {
		return err
	}
	for _, e := range res.Entities {
		if e.Canonical == canonical {
			return fmt.Errorf("unexpected entity %q (surface %q)", canonical, e.Surface)
		}
	}
	return nil
}

func (testCtx *TestContext) entitiesShouldBeFound(count int) error {
	res, err := testCtx.requireResult()
	if err != nil {
		return err
	}
	if len(res.Entities) != count {
		return fmt.Errorf("found %d entities, expected %d: %v", len(res.Entities), count, res.Entities)
	}
	return nil
}

// entitySurfacesShouldAppearInTheRawText checks every reported surface form
// is literally present in the recognized text.
func (testCtx *TestContext) entitySurfacesShouldAppearInTheRawText() error {
	res, err := testCtx.requireResult()
	if err != nil {
		return err
	}
	for _, e := range res.Entities {
		if !strings.Contains(res.RawText, e.Surface) {
			return fmt.Errorf("surface %q of entity %q not found in raw text", e.Surface, e.Canonical)
		}
	}
	return nil
}

func (testCtx *TestContext) aDosageShouldBeLinked(amount, unit, medication string) error {
	res, err := testCtx.requireResult()
	if err != nil {
		return err
	}
	for _, link := range res.DosageLinks {
		if link.Amount == amount && link.Unit == unit && link.Medication == medication {
			return nil
		}
	}
	return fmt.Errorf("no dosage link %s %s -> %s among %v", amount, unit, medication, res.DosageLinks)
}

func (testCtx *TestContext) noDosageLinksShouldBeReported() error {
	res, err := testCtx.requireResult()
	if err != nil {
		return err
	}
	if len(res.DosageLinks) != 0 {
		return fmt.Errorf("unexpected dosage links: %v", res.DosageLinks)
	}
	return nil
}

func (testCtx *TestContext) thePatientNameShouldBe(name string) error {
	res, err := testCtx.requireResult()
	if err != nil {
		return err
	}
	if res.Fields == nil || res.Fields.Patient == nil {
		return fmt.Errorf("no patient fields extracted, expected name %q", name)
	}
	if res.Fields.Patient.Name != name {
		return fmt.Errorf("patient name is %q, expected %q", res.Fields.Patient.Name, name)
	}
	return nil
}

func (testCtx *TestContext) thePatientDateOfBirthShouldBe(dob string) error {
	res, err := testCtx.requireResult()
	if err != nil {
		return err
	}
	if res.Fields == nil || res.Fields.Patient == nil {
		return fmt.Errorf("no patient fields extracted, expected date of birth %q", dob)
	}
	if res.Fields.Patient.DOB != dob {
		return fmt.Errorf("patient date of birth is %q, expected %q", res.Fields.Patient.DOB, dob)
	}
	return nil
}

func (testCtx *TestContext) anInstructionContainingShouldBeExtracted(text string) error {
	res, err := testCtx.requireResult()
	if err != nil {
		return err
	}
	if res.Fields == nil {
		return fmt.Errorf("no fields extracted, expected an instruction containing %q", text)
	}
	for _, instr := range res.Fields.Instructions {
		if strings.Contains(instr, text) {
			return nil
		}
	}
	return fmt.Errorf("no instruction containing %q among %v", text, res.Fields.Instructions)
}

func (testCtx *TestContext) theExtractedDatesShouldInclude(date string) error {
	res, err := testCtx.requireResult()
	if err != nil {
		return err
	}
	if res.Fields == nil {
		return fmt.Errorf("no fields extracted, expected date %q", date)
	}
	for _, d := range res.Fields.Dates {
		if d == date {
			return nil
		}
	}
	return fmt.Errorf("date %q not among %v", date, res.Fields.Dates)
}

// RegisterEntitySteps wires entity, dosage link, and field assertions.
func (testCtx *TestContext) RegisterEntitySteps(sc *godog.ScenarioContext) {
	sc.Step(`^the entities should include a "([^"]*)" for "([^"]*)"$`, testCtx.theEntitiesShouldIncludeFor)
	sc.Step(`^the entities should not include "([^"]*)"$`, testCtx.theEntitiesShouldNotInclude)
	sc.Step(`^(\d+) entities should be found$`, testCtx.entitiesShouldBeFound)
	sc.Step(`^entity surfaces should appear in the raw text$`, testCtx.entitySurfacesShouldAppearInTheRawText)
	sc.Step(`^a dosage of "([^"]*)" "([^"]*)" should be linked to "([^"]*)"$`, testCtx.aDosageShouldBeLinked)
	sc.Step(`^no dosage links should be reported$`, testCtx.noDosageLinksShouldBeReported)
	sc.Step(`^the patient name should be extracted as "([^"]*)"$`, testCtx.thePatientNameShouldBe)
	sc.Step(`^the patient date of birth should be extracted as "([^"]*)"$`, testCtx.thePatientDateOfBirthShouldBe)
	sc.Step(`^an instruction containing "([^"]*)" should be extracted$`, testCtx.anInstructionContainingShouldBeExtracted)
	sc.Step(`^the extracted dates should include "([^"]*)"$`, testCtx.theExtractedDatesShouldInclude)
}

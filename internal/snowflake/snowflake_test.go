package snowflake

import "testing"

func TestSetupSnowflake(t *testing.T) {
	err := Setup(0)
	if err != nil {
		t.Error(err)
	}
}

func TestGenerateSnowflake(t *testing.T) {
	_, err := Generate()
	if err != nil {
		t.Error(err)
	}
}

func TestSnowflakeOrdering(t *testing.T) {
	previous, err := Generate()
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 1000; i++ {
		id, err := Generate()
		if err != nil {
			// increment overflow within one millisecond is acceptable here
			return
		}
		if id <= previous {
			t.Fatalf("id %d is not greater than previous id %d", id, previous)
		}
		if CreationTime(id).Before(CreationTime(previous)) {
			t.Fatalf("creation time of %d is before creation time of %d", id, previous)
		}
		previous = id
	}
}

func TestSnowflakeExtract(t *testing.T) {
	id, err := Generate()
	if err != nil {
		t.Fatal(err)
	}

	extracted := Extract(id)
	if extracted.WorkerID != workerID {
		t.Errorf("extracted worker ID %d, want %d", extracted.WorkerID, workerID)
	}
	if extracted.Timestamp != id>>timestampPos {
		t.Errorf("extracted timestamp %d, want %d", extracted.Timestamp, id>>timestampPos)
	}
}

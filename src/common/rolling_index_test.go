package common

import (
	"fmt"
	"reflect"
	"testing"
)

func TestRollingIndex(t *testing.T) {
	size := 10
	testSize := 3 * size
	rollingIndex := NewRollingIndex("test", size)
	items := []string{}
	for i := 0; i < testSize; i++ {
		item := fmt.Sprintf("item%d", i)
		rollingIndex.Set(item, i)
		items = append(items, item)
	}
	cached, lastIndex := rollingIndex.GetLastWindow()

	expectedLastIndex := testSize - 1
	if lastIndex != expectedLastIndex {
		t.Fatalf("lastIndex should be %d, not %d", expectedLastIndex, lastIndex)
	}

	start := (testSize / (2 * size)) * (size)
	count := testSize - start

	for i := 0; i < count; i++ {
		if cached[i] != items[start+i] {
			t.Fatalf("cached[%d] should be %s, not %s", i, items[start+i], cached[i])
		}
	}

	err := rollingIndex.Set("ErrSkippedIndex", expectedLastIndex+2)
	if err == nil || !IsStore(err, SkippedIndex) {
		t.Fatalf("Should return ErrSkippedIndex")
	}

	_, err = rollingIndex.GetItem(9)
	if err == nil || !IsStore(err, TooLate) {
		t.Fatalf("Should return ErrTooLate")
	}

	var item interface{}

	indexes := []int{10, 17, 29}
	for _, i := range indexes {
		item, err = rollingIndex.GetItem(i)
		if err != nil {
			t.Fatalf("GetItem(%d) err: %v", i, err)
		}
		if !reflect.DeepEqual(item, items[i]) {
			t.Fatalf("GetItem error")
		}
	}

	_, err = rollingIndex.GetItem(lastIndex + 1)
	if err == nil || !IsStore(err, KeyNotFound) {
		t.Fatalf("Should return KeyNotFound")
	}

	//Test updating an item in place
	updateIndex := 26
	updateValue := "Updated Item"

	err = rollingIndex.Set(updateValue, updateIndex)
	if err != nil {
		t.Fatalf("SetItem(%d) err: %v", updateIndex, err)
	}
	item, err = rollingIndex.GetItem(updateIndex)
	if err != nil {
		t.Fatalf("GetItem(%d) err: %v", updateIndex, err)
	}
	if uv := item.(string); uv != updateValue {
		t.Fatalf("Updated item %d should be %s, not %s", updateIndex, updateValue, uv)
	}
}

func TestRollingIndexSkip(t *testing.T) {
	size := 10
	testSize := 25
	rollingIndex := NewRollingIndex("test", size)

	_, err := rollingIndex.Get(-1)
	if err != nil {
		t.Fatal(err)
	}

	items := []string{}
	for i := 0; i < testSize; i++ {
		item := fmt.Sprintf("item%d", i)
		rollingIndex.Set(item, i)
		items = append(items, item)
	}

	if _, err := rollingIndex.Get(0); err != nil && !IsStore(err, TooLate) {
		t.Fatalf("Skipping index 0 should return ErrTooLate")
	}

	skipIndex := 15
	expected := items[skipIndex+1:]
	cached, err := rollingIndex.Get(skipIndex)
	if err != nil {
		t.Fatal(err)
	}
	convertedItems := []string{}
	for _, item := range cached {
		convertedItems = append(convertedItems, item.(string))
	}
	if !reflect.DeepEqual(expected, convertedItems) {
		t.Fatalf("expected and cached not equal")
	}
}

package components

import "testing"

// TestTrail_PushWithinCapacity 测试容量内追加
func TestTrail_PushWithinCapacity(t *testing.T) {
	var tr Trail
	for i := 0; i < 3; i++ {
		tr.Push(TrailPoint{X: float64(i)})
	}

	if tr.Len() != 3 {
		t.Fatalf("Expected 3 points, got %d", tr.Len())
	}
	for i := 0; i < 3; i++ {
		if tr.At(i).X != float64(i) {
			t.Errorf("At(%d).X = %v, want %d", i, tr.At(i).X, i)
		}
	}
}

// TestTrail_EvictsOldest 测试超出容量时淘汰最旧的点
func TestTrail_EvictsOldest(t *testing.T) {
	var tr Trail
	for i := 0; i < 20; i++ {
		tr.Push(TrailPoint{X: float64(i)})
		if tr.Len() > TrailCapacity {
			t.Fatalf("Trail length %d exceeds capacity %d", tr.Len(), TrailCapacity)
		}
	}

	if tr.Len() != TrailCapacity {
		t.Fatalf("Expected full trail, got %d", tr.Len())
	}
	// 保留最近的 8 个点：12..19
	for i := 0; i < TrailCapacity; i++ {
		want := float64(20 - TrailCapacity + i)
		if tr.At(i).X != want {
			t.Errorf("At(%d).X = %v, want %v", i, tr.At(i).X, want)
		}
	}
}

// TestTrail_ClearAndAppend 测试清空和导出
func TestTrail_ClearAndAppend(t *testing.T) {
	var tr Trail
	for i := 0; i < 10; i++ {
		tr.Push(TrailPoint{Y: float64(i)})
	}

	pts := tr.AppendTo(nil)
	if len(pts) != TrailCapacity || pts[0].Y != 2 || pts[len(pts)-1].Y != 9 {
		t.Errorf("AppendTo returned %v", pts)
	}

	tr.Clear()
	if tr.Len() != 0 {
		t.Errorf("Expected empty trail after Clear, got %d", tr.Len())
	}
	tr.Push(TrailPoint{Y: 42})
	if tr.At(0).Y != 42 {
		t.Errorf("Expected first point after Clear to be 42, got %v", tr.At(0).Y)
	}
}

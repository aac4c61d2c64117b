package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsyncVoid(t *testing.T) {
	source := `using System;
using Esri.ArcGISRuntime.Mapping;

namespace Samples
{
    public partial class DisplayMap
    {
        public DisplayMap()
        {
            InitializeComponent();
            Initialize();
        }

        private async void Initialize()
        {
            await LoadAsync();
        }

        private async void OnClick(object sender, RoutedEventArgs e)
        {
            this.Refresh(true);
        }

        private async void Refresh(bool force)
        {
            await Task.Delay(1);
        }
    }
}
`
	want := `using System;
using Esri.ArcGISRuntime.Mapping;
using System.Threading.Tasks;

namespace Samples
{
    public partial class DisplayMap
    {
        public DisplayMap()
        {
            InitializeComponent();
            _ = Initialize();
        }

        private async Task Initialize()
        {
            await LoadAsync();
        }

        private async void OnClick(object sender, RoutedEventArgs e)
        {
            _ = this.Refresh(true);
        }

        private async Task Refresh(bool force)
        {
            await Task.Delay(1);
        }
    }
}
`
	assert.Equal(t, want, AsyncVoid(source))
}

func TestAsyncVoidLeavesHandlersAlone(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"sender", "private async void Handler(object sender, EventArgs e) { }\n"},
		{"typed args", "private async void Tapped(GeoViewInputEventArgs args) { }\n"},
		{"no async void", "private async Task Load() { }\n"},
		{"lambda", "button.Click += async (s, e) => await Load();\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.source, AsyncVoid(tt.source))
		})
	}
}

func TestAsyncVoidKeepsExistingUsing(t *testing.T) {
	source := "using System.Threading.Tasks;\r\n\r\nclass A\r\n{\r\n    async void Load() { }\r\n    void Start()\r\n    {\r\n        Load();\r\n    }\r\n}\r\n"
	want := "using System.Threading.Tasks;\r\n\r\nclass A\r\n{\r\n    async Task Load() { }\r\n    void Start()\r\n    {\r\n        _ = Load();\r\n    }\r\n}\r\n"
	assert.Equal(t, want, AsyncVoid(source))
}

func TestEnsureUsing(t *testing.T) {
	assert.Equal(t, "using System.Threading.Tasks;\nclass A {}", ensureUsing("class A {}", tasksUsing))
	assert.Equal(t, "using System;\r\nusing System.Threading.Tasks;\r\nclass A {}", ensureUsing("using System;\r\nclass A {}", tasksUsing))
}
